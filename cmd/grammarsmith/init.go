package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initName  string
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter grammar manifest",
	Long: `Initialize a directory for grammarsmith.

This command creates:
  - A starter grammar manifest (<name>.yaml) to edit
  - A .grammarsmith.yaml project config with defaults

The directory argument is optional and defaults to the current directory.

Examples:
  grammarsmith init                    # Initialize current directory
  grammarsmith init ./mylang           # Initialize specific directory
  grammarsmith init --name mylang      # Set the language id`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initName, "name", "", "Language id (default: directory name)")
}

const starterManifest = `language:
  id: %s
  name: %s
  extensions: [".%s"]
  line_comment: "//"
  block_comment: ["/*", "*/"]

keywords: [if, else, while, return, let, fn]

operators: ["+", "-", "*", "/", "==", "!=", "=", "->"]

strings:
  delimiters: ['"']
  escape: "\\"

snippets:
  - name: Function
    prefix: fn
    body:
      - "fn ${1:name}($2) {"
      - "\t$0"
      - "}"
`

const starterProjectConfig = `engine:
  pool_size: 0          # auto (CPU count, capped)
  default_timeout: 30s
output:
  dir: extension
tui:
  enabled: true
watch:
  debounce: 300ms
`

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	name := initName
	if name == "" {
		name = filepath.Base(absPath)
	}

	manifestPath := filepath.Join(absPath, name+".yaml")
	if err := writeInitFile(manifestPath, fmt.Sprintf(starterManifest, name, title(name), name)); err != nil {
		return err
	}
	fmt.Printf("%s Created %s\n", color.GreenString("✓"), manifestPath)

	configPath := filepath.Join(absPath, ".grammarsmith.yaml")
	if err := writeInitFile(configPath, starterProjectConfig); err != nil {
		return err
	}
	fmt.Printf("%s Created %s\n", color.GreenString("✓"), configPath)

	fmt.Printf("\nEdit %s.yaml, then run:\n  grammarsmith generate %s.yaml\n", name, name)
	return nil
}

// writeInitFile writes content unless the file already exists and
// --force was not given.
func writeInitFile(path, content string) error {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// title uppercases the first rune of a language id for display.
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
