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

package testutils

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

const (
	ServerBinary  = "../../bin/customize-server"
	ServerPort    = "9000"
	TestServerURL = "http://localhost:" + ServerPort
	ConfigPath    = "testdata/config.yaml"
	DatabasePath  = "bin/integration.db"
)

var serverCmd *exec.Cmd

// BuildServer compiles the customize server binary
func BuildServer() error {
	fmt.Println("Building customize server...")
	cmd := exec.Command("go", "build",
		"-o", "bin/customize-server",
		"./cmd/server")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// SetupDatabase removes the sqlite file of a previous run; the server creates the schema on start
func SetupDatabase() error {
	fmt.Println("Setting up test database...")
	if err := os.MkdirAll(filepath.Dir(DatabasePath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := os.Remove(DatabasePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old database: %w", err)
	}
	return nil
}

// StartServer starts the customize server in background
func StartServer() error {
	fmt.Println("Starting customize server...")
	cmd := exec.Command(ServerBinary)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = append(os.Environ(),
		"CONFIG_PATH="+ConfigPath,
		"GIN_MODE=release",
	)

	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	serverCmd = cmd
	return nil
}

// StopServer gracefully stops the customize server
func StopServer() error {
	if serverCmd == nil || serverCmd.Process == nil {
		return nil
	}

	fmt.Println("Stopping server...")

	err := serverCmd.Process.Signal(syscall.SIGTERM)
	if err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	_, err = serverCmd.Process.Wait()
	return err
}

// WaitForServer waits for the server to be ready
func WaitForServer() error {
	fmt.Println("Waiting for server to be ready...")
	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(TestServerURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			fmt.Println("✓ Server is ready!")
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("server did not start within timeout")
}
