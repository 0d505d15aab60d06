package cmd

import (
	"os"
	"strings"
	"testing"
)

func TestExecute_UnknownCommand(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"openl-mcp", "bogus"}

	err := Execute()
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown command")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error = %q, want to contain the unknown command name", err.Error())
	}
}

func TestExecute_Version(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"openl-mcp", "--version"}

	if err := Execute(); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"openl-mcp"}

	if err := Execute(); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
}
