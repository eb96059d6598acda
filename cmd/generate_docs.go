package cmd

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/calendar-assistant/internal/tools/calendar_tools"
)

const (
	categoryRead  = "Reading the Calendar"
	categoryWrite = "Changing the Calendar"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The output is built from the tool catalog, so it always matches the tools
the server registers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(cmd *cobra.Command, outputFile string) error {
	markdown := generateToolsMarkdown(calendar_tools.Catalog())

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), markdown)
	return nil
}

func generateToolsMarkdown(schemas []calendar_tools.ToolSchema) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists the tools available when running calendar-assistant as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(schemas)
	categories := []string{categoryRead, categoryWrite}

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Conventions\n\n")
	sb.WriteString("- Times are ISO 8601. Times without an offset are read in the `timezone` argument, or the server's configured time zone.\n")
	sb.WriteString("- `calendar_id` defaults to the server's configured calendar (`primary` unless changed).\n")
	sb.WriteString("- When the server runs with `--read-only`, only the tools under \"" + categoryRead + "\" are registered.\n\n")

	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, schema := range toolsByCategory[category] {
			sb.WriteString(generateToolMarkdown(schema.Tool()))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// groupToolsByCategory keeps catalog order within each category.
func groupToolsByCategory(schemas []calendar_tools.ToolSchema) map[string][]calendar_tools.ToolSchema {
	categories := make(map[string][]calendar_tools.ToolSchema)
	for _, schema := range schemas {
		category := categoryWrite
		if schema.Kind.ReadOnly() {
			category = categoryRead
		}
		categories[category] = append(categories[category], schema)
	}
	return categories
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)

	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Required arguments first, then alphabetical.
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Slice(propNames, func(i, j int) bool {
			ri := slices.Contains(tool.InputSchema.Required, propNames[i])
			rj := slices.Contains(tool.InputSchema.Required, propNames[j])
			if ri != rj {
				return ri
			}
			return propNames[i] < propNames[j]
		})

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr)
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				fmt.Fprintf(&sb, "%s parameter", getPropertyType(propMap))
			}
			if def, ok := propMap["default"]; ok && def != "" {
				fmt.Fprintf(&sb, " Default: `%v`.", def)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	t, ok := prop["type"].(string)
	if !ok {
		return "any"
	}
	if t == "array" {
		if items, ok := prop["items"].(map[string]any); ok {
			if it, ok := items["type"].(string); ok {
				return "array of " + it
			}
		}
	}
	return t
}
