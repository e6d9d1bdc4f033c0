package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/wso2/customize-validation-api/pkg/customize"
	"github.com/wso2/customize-validation-api/pkg/ordered"
)

var (
	serverURL string
	username  string
	password  string
	timeout   time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "customizectl",
	Short: "Validate and save customizer settings",
	Long: `customizectl talks to the customize validation API.

Commands:
  validate - run the server validation gate without saving
  save     - save pending values and show per-control validation messages
  settings - list registered settings with their current values`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Customize API base URL")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "Basic auth username")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Basic auth password")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func newTransport(logger *logrus.Logger) *customize.HTTPTransport {
	transport := customize.NewHTTPTransport(serverURL, logger)
	transport.Username = username
	transport.Password = password
	transport.Client.Timeout = timeout
	return transport
}

// readPending reads pending values from path ("-" for stdin). Both a bare
// object and a save request body with a "customized" object are accepted.
func readPending(path string) (*ordered.Map[any], error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}

	doc := gjson.ParseBytes(data)
	if customized := doc.Get("customized"); customized.IsObject() {
		doc = customized
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("%s must contain a JSON object", path)
	}

	pending := ordered.NewMap[any]()
	doc.ForEach(func(key, value gjson.Result) bool {
		pending.Set(key.String(), value.Value())
		return true
	})
	return pending, nil
}

func printInvalid(w io.Writer, invalid *ordered.Map[string]) {
	invalid.Each(func(id, msg string) bool {
		fmt.Fprintf(w, "  [-] %-30s %s\n", id, msg)
		return true
	})
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
