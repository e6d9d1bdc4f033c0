/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package customize

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"

	"github.com/wso2/customize-validation-api/pkg/customize"
	"github.com/wso2/customize-validation-api/pkg/ordered"
	"github.com/wso2/customize-validation-api/tests/integration/testutils"
)

type CustomizeAPITestSuite struct {
	suite.Suite
	transport *customize.HTTPTransport
}

func TestCustomizeAPITestSuite(t *testing.T) {
	suite.Run(t, new(CustomizeAPITestSuite))
}

// SetupSuite runs once before all tests
func (ts *CustomizeAPITestSuite) SetupSuite() {
	ts.transport = customize.NewHTTPTransport(testutils.TestServerURL, nil)
	ts.T().Logf("=== Customize Test Suite Starting ===")
}

func (ts *CustomizeAPITestSuite) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ts.T().Cleanup(cancel)
	return ctx
}

func pending(kv ...any) *ordered.Map[any] {
	m := ordered.NewMap[any]()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func (ts *CustomizeAPITestSuite) settingValue(id string) gjson.Result {
	resp, err := http.Get(testutils.TestServerURL + customize.SettingsPath + "/" + id)
	ts.Require().NoError(err)
	defer resp.Body.Close()
	ts.Require().Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	ts.Require().NoError(err)
	return gjson.GetBytes(body, "value")
}

// TestSave_ValidValuesAreSanitizedAndPersisted saves valid values and reads back the canonical ones
func (ts *CustomizeAPITestSuite) TestSave_ValidValuesAreSanitizedAndPersisted() {
	resp, err := ts.transport.Save(ts.ctx(), pending(
		"blogname", "  Integration Blog  ",
		"posts_per_page", "25",
	))
	ts.Require().NoError(err)

	ts.Require().Equal("Settings saved.", resp.Message)
	ts.Require().NotEmpty(resp.ChangesetID)
	ts.Require().Equal([]string{"blogname", "posts_per_page"}, resp.SanitizedSettingValues.Keys())

	blogname, _ := resp.SanitizedSettingValues.Get("blogname")
	ts.Require().Equal("Integration Blog", blogname)

	ts.Require().Equal("Integration Blog", ts.settingValue("blogname").String())
	ts.Require().Equal(int64(25), ts.settingValue("posts_per_page").Int())
}

// TestSave_InvalidBatchIsAtomic submits one valid and two invalid settings and checks nothing is written
func (ts *CustomizeAPITestSuite) TestSave_InvalidBatchIsAtomic() {
	before := ts.settingValue("site_icon").Raw

	_, err := ts.transport.Save(ts.ctx(), pending(
		"site_icon", 42,
		"blogname", "",
		"posts_per_page", "lots",
	))

	var saveErr *customize.SaveError
	ts.Require().True(errors.As(err, &saveErr))
	ts.Require().Equal(http.StatusBadRequest, saveErr.StatusCode)
	ts.Require().Equal("There are 2 invalid settings.", saveErr.Message)
	ts.Require().Equal([]string{"blogname", "posts_per_page"}, saveErr.InvalidSettings.Keys())

	msg, _ := saveErr.InvalidSettings.Get("blogname")
	ts.Require().Equal("Title required.", msg)
	msg, _ = saveErr.InvalidSettings.Get("posts_per_page")
	ts.Require().Equal("Invalid value.", msg)

	ts.Require().Equal(before, ts.settingValue("site_icon").Raw)
}

// TestSave_UnknownSettingsAreIgnored sends a stale setting ID alongside a valid one
func (ts *CustomizeAPITestSuite) TestSave_UnknownSettingsAreIgnored() {
	resp, err := ts.transport.Save(ts.ctx(), pending(
		"removed_setting", "x",
		"site_icon", 7,
	))
	ts.Require().NoError(err)
	ts.Require().Equal([]string{"site_icon"}, resp.SanitizedSettingValues.Keys())
}

// TestSave_EmptiedWidgetInstance stores the canonical empty instance
func (ts *CustomizeAPITestSuite) TestSave_EmptiedWidgetInstance() {
	resp, err := ts.transport.Save(ts.ctx(), pending("widget_text[2]", []any{}))
	ts.Require().NoError(err)

	v, ok := resp.SanitizedSettingValues.Get("widget_text[2]")
	ts.Require().True(ok)
	ts.Require().Equal(map[string]any{}, v)
}

// TestValidate_DoesNotPersist runs the dry-run endpoint
func (ts *CustomizeAPITestSuite) TestValidate_DoesNotPersist() {
	before := ts.settingValue("posts_per_page").Raw

	msg, err := ts.transport.Validate(ts.ctx(), pending("posts_per_page", 3))
	ts.Require().NoError(err)
	ts.Require().Equal("All settings are valid.", msg)
	ts.Require().Equal(before, ts.settingValue("posts_per_page").Raw)

	_, err = ts.transport.Validate(ts.ctx(), pending("posts_per_page", 1000))
	var saveErr *customize.SaveError
	ts.Require().True(errors.As(err, &saveErr))
	msg, _ = saveErr.InvalidSettings.Get("posts_per_page")
	ts.Require().Equal("Value must be at most 100.", msg)
}

// TestSave_MalformedBody is rejected before the gate runs
func (ts *CustomizeAPITestSuite) TestSave_MalformedBody() {
	resp, err := http.Post(testutils.TestServerURL+customize.SavePath, "application/json", bytes.NewBufferString(`{"customized":`))
	ts.Require().NoError(err)
	defer resp.Body.Close()

	ts.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	ts.Require().Equal("INVALID_SAVE_REQUEST", gjson.GetBytes(body, "code").String())
}

// TestEditor_RejectedSaveFocusesFirstInvalidControl drives the client editor against the live server
func (ts *CustomizeAPITestSuite) TestEditor_RejectedSaveFocusesFirstInvalidControl() {
	var focused []string
	editor := customize.NewEditor(
		customize.WithTransport(ts.transport),
		customize.WithFocusHandler(func(c *customize.Control) { focused = append(focused, c.ID) }),
	)
	customize.Attach(editor)

	section := customize.NewSection("title_tagline", true)
	ts.Require().NoError(editor.AddSection(section))

	siteIcon := customize.NewSetting("site_icon", float64(0))
	blogname := customize.NewSetting("blogname", "My Site")
	ts.Require().NoError(editor.AddSetting(siteIcon))
	ts.Require().NoError(editor.AddSetting(blogname))

	iconControl, err := customize.NewControl("site_icon", "media", []*customize.Setting{siteIcon})
	ts.Require().NoError(err)
	titleControl, err := customize.NewControl("blogname", "text", []*customize.Setting{blogname}, customize.InSection("title_tagline"))
	ts.Require().NoError(err)
	ts.Require().NoError(editor.AddControl(iconControl))
	ts.Require().NoError(editor.AddControl(titleControl))
	iconControl.Embedded.Resolve()
	titleControl.Embedded.Resolve()

	siteIcon.Set("not a number")
	blogname.Set("A title that is far too long")

	_, err = editor.Save(ts.ctx())
	ts.Require().Error(err)

	ts.Require().Equal("Invalid value.", iconControl.Validation().Get())
	ts.Require().Equal("Too long (maximum 20 characters).", titleControl.Validation().Get())
	ts.Require().Equal([]string{"blogname"}, focused)
	ts.Require().True(customize.HasClass(titleControl.Container, customize.ClassInvalid))
}
