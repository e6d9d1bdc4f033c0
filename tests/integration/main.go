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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/wso2/customize-validation-api/tests/integration/testutils"
)

var (
	runPattern = flag.String("run", "", "Only run tests matching the pattern")
	keepDB     = flag.Bool("keep-db", false, "Keep the sqlite database after the run")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if os.Getenv("SKIP_BUILD") == "" {
		if err := testutils.BuildServer(); err != nil {
			fmt.Printf("Failed to build server binary: %v\n", err)
			return 1
		}
	}

	if err := testutils.SetupDatabase(); err != nil {
		fmt.Printf("Failed to setup database: %v\n", err)
		return 1
	}
	if !*keepDB {
		defer os.Remove(testutils.DatabasePath)
	}
	fmt.Println("✓ Database initialized")

	if err := testutils.StartServer(); err != nil {
		fmt.Printf("Failed to start server: %v\n", err)
		return 1
	}
	defer testutils.StopServer()

	time.Sleep(time.Second)
	if err := testutils.WaitForServer(); err != nil {
		fmt.Printf("Server failed to start: %v\n", err)
		return 1
	}

	fmt.Println("\nRunning tests...")
	if err := runTests(); err != nil {
		fmt.Printf("Tests failed: %v\n", err)
		return 1
	}

	fmt.Println("\n✓ All tests completed successfully!")
	return 0
}

func runTests() error {
	packages := []string{
		"./customize",
	}

	for _, pkg := range packages {
		args := []string{"test", "-v", "-count=1", pkg}
		if *runPattern != "" {
			args = append(args, "-run", *runPattern)
		}

		fmt.Printf("\nRunning tests in %s...\n", pkg)
		cmd := exec.Command("go", args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("tests failed in package %s: %w", pkg, err)
		}
	}

	return nil
}
