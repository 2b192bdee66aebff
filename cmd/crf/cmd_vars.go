package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datalab/go-crf/pkg/api"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Manage the backend variable catalog",
}

var varsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the raw variable rows the backend serves",
	RunE:  runVarsList,
}

var (
	varAddCode     string
	varAddLabel    string
	varAddType     string
	varAddOptions  string
	varAddSection  string
	varAddApplies  string
	varAddOrder    int
	varAddRequired bool
	varAddRule     string
)

var varsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a variable on the backend",
	RunE:  runVarsAdd,
}

var varsRmCmd = &cobra.Command{
	Use:   "rm <code>",
	Short: "Delete a variable by code",
	Args:  cobra.ExactArgs(1),
	RunE:  runVarsRm,
}

func init() {
	varsAddCmd.Flags().StringVar(&varAddCode, "code", "", "variable code (required)")
	varsAddCmd.Flags().StringVar(&varAddLabel, "label", "", "question text (required)")
	varsAddCmd.Flags().StringVar(&varAddType, "type", "texto", "data type tag")
	varsAddCmd.Flags().StringVar(&varAddOptions, "options", "", "comma-separated options for choice types")
	varsAddCmd.Flags().StringVar(&varAddSection, "section", "", "section title")
	varsAddCmd.Flags().StringVar(&varAddApplies, "applies-to", "", "group restriction: caso, control, or empty for both")
	varsAddCmd.Flags().IntVar(&varAddOrder, "order", 0, "position inside the section")
	varsAddCmd.Flags().BoolVar(&varAddRequired, "required", false, "mark the variable mandatory")
	varsAddCmd.Flags().StringVar(&varAddRule, "rule", "", "validation rule JSON")
	_ = varsAddCmd.MarkFlagRequired("code")
	_ = varsAddCmd.MarkFlagRequired("label")

	varsCmd.AddCommand(varsListCmd)
	varsCmd.AddCommand(varsAddCmd)
	varsCmd.AddCommand(varsRmCmd)
}

func runVarsList(cmd *cobra.Command, args []string) error {
	rows, err := newClient().Variables(context.Background())
	if err != nil {
		return err
	}
	for _, row := range rows {
		code, typeTag := row.Code, row.TypeTag
		if code == "" {
			code = row.CodeAlt
		}
		if typeTag == "" {
			typeTag = row.TypeTagAlt
		}
		required := ""
		if row.Required || row.RequiredAlt {
			required = " *"
		}
		fmt.Printf("%-24s %-10s %-20s %s%s\n", code, typeTag, row.Section, row.Label, required)
	}
	return nil
}

func runVarsAdd(cmd *cobra.Command, args []string) error {
	err := newClient().CreateVariable(context.Background(), api.VariableRequest{
		Label:     varAddLabel,
		Code:      varAddCode,
		TypeTag:   varAddType,
		Options:   varAddOptions,
		AppliesTo: varAddApplies,
		Section:   varAddSection,
		Order:     varAddOrder,
		Required:  varAddRequired,
		Rule:      varAddRule,
	})
	if err != nil {
		return err
	}
	fmt.Printf("variable %s creada\n", varAddCode)
	return nil
}

func runVarsRm(cmd *cobra.Command, args []string) error {
	if err := newClient().DeleteVariable(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("variable %s eliminada\n", args[0])
	return nil
}
