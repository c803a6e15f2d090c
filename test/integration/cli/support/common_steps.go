package support

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/nutrilabel/cmd/nutrilabel/cmd"
)

// substituteCommandVariables expands {tmp} and named fixture images.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	command = strings.ReplaceAll(command, "{tmp}", testCtx.TempDir)
	for name, path := range testCtx.Images {
		command = strings.ReplaceAll(command, "{"+name+"}", path)
	}
	return command
}

// runCommand executes the CLI in-process and stores the result.
func (testCtx *TestContext) runCommand(command, stdin string) error {
	command = testCtx.substituteCommandVariables(command)
	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "nutrilabel" {
		return fmt.Errorf("unknown program %q", parts[0])
	}

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(parts[1:])

	testCtx.LastError = root.Execute()
	testCtx.LastOutput = stdout.String()
	testCtx.LastErrOutput = stderr.String()
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	return nil
}

func (testCtx *TestContext) iRunCommand(command string) error {
	return testCtx.runCommand(command, "")
}

func (testCtx *TestContext) iRunCommandWithInput(command, input string) error {
	return testCtx.runCommand(command, input)
}

func (testCtx *TestContext) iRunCommandWithDocInput(command string, doc *godog.DocString) error {
	return testCtx.runCommand(command, doc.Content)
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("command failed: %w\nOutput: %s\nStderr: %s",
			testCtx.LastError, testCtx.LastOutput, testCtx.LastErrOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'", text)
	}
	return nil
}

func (testCtx *TestContext) theErrorOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastErrOutput, expectedText) {
		return fmt.Errorf("stderr does not contain '%s'\nActual stderr: %s", expectedText, testCtx.LastErrOutput)
	}
	return nil
}

// theErrorShouldMention verifies the error message contains specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}
	if !strings.Contains(strings.ToLower(testCtx.LastError.Error()), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, testCtx.LastError)
	}
	return nil
}

// extractJSON returns the first JSON document found in s.
func extractJSON(s string) (any, error) {
	s = strings.TrimSpace(s)
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return nil, fmt.Errorf("no JSON found in output: %s", s)
	}
	var v any
	if err := json.Unmarshal([]byte(s[start:]), &v); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w\nJSON part: %s", err, s[start:])
	}
	return v, nil
}

// lookupJSON walks a dotted path; numeric parts index arrays.
func lookupJSON(doc any, path string) (any, error) {
	current := doc
	parts := strings.Split(path, ".")
	for i, part := range parts {
		switch node := current.(type) {
		case map[string]any:
			val, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field '%s' not found in JSON", strings.Join(parts[:i+1], "."))
			}
			current = val
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("invalid index '%s' at '%s'", part, strings.Join(parts[:i], "."))
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("cannot navigate deeper into non-object field '%s'", strings.Join(parts[:i], "."))
		}
	}
	return current, nil
}

func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	_, err := extractJSON(testCtx.LastOutput)
	return err
}

func (testCtx *TestContext) theJSONShouldContain(field string) error {
	doc, err := extractJSON(testCtx.LastOutput)
	if err != nil {
		return err
	}
	_, err = lookupJSON(doc, field)
	return err
}

func jsonFieldEquals(raw, field, want string) error {
	doc, err := extractJSON(raw)
	if err != nil {
		return err
	}
	val, err := lookupJSON(doc, field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(val); got != want {
		return fmt.Errorf("field '%s' is %q, want %q", field, got, want)
	}
	return nil
}

func (testCtx *TestContext) theJSONFieldShouldBe(field, want string) error {
	return jsonFieldEquals(testCtx.LastOutput, field, want)
}

func (testCtx *TestContext) theOutputShouldHaveLines(n int) error {
	lines := strings.Split(strings.TrimSpace(testCtx.LastOutput), "\n")
	if len(lines) != n {
		return fmt.Errorf("output has %d lines, want %d\n%s", len(lines), n, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(filename string) error {
	path := testCtx.substituteCommandVariables(filename)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(filename, expected string) error {
	path := testCtx.substituteCommandVariables(filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", path, expected, data)
	}
	return nil
}

func (testCtx *TestContext) aFileContaining(filename string, doc *godog.DocString) error {
	path := testCtx.substituteCommandVariables(filename)
	if err := os.WriteFile(path, []byte(doc.Content), 0o600); err != nil {
		return err
	}
	testCtx.TrackFile(path)
	return nil
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	return testCtx.SetEnv(name, value)
}

// registerCommandSteps registers command execution steps.
func (testCtx *TestContext) registerCommandSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^I run "([^"]*)" with input "([^"]*)"$`, testCtx.iRunCommandWithInput)
	sc.Step(`^I run "([^"]*)" with input:$`, testCtx.iRunCommandWithDocInput)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
}

// registerOutputSteps registers output verification steps.
func (testCtx *TestContext) registerOutputSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the error output should contain "([^"]*)"$`, testCtx.theErrorOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the output should have (\d+) lines$`, testCtx.theOutputShouldHaveLines)
}

// registerFileSteps registers file and environment steps.
func (testCtx *TestContext) registerFileSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^a file "([^"]*)" containing:$`, testCtx.aFileContaining)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
}

// RegisterCommonSteps registers all common step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	testCtx.registerCommandSteps(sc)
	testCtx.registerOutputSteps(sc)
	testCtx.registerFileSteps(sc)
}
