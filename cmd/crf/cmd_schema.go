package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datalab/go-crf/pkg/derived"
	"github.com/datalab/go-crf/pkg/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the resolved form schema",
	RunE:  runSchemaShow,
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sch, err := newProvider().Load(ctx)
	if err != nil {
		return err
	}

	roles := derived.DetectRoles(sch)
	for _, section := range sch.Sections {
		fmt.Printf("%s%s\n", section.Title, groupSuffix(section.Groups))
		for _, field := range section.Fields {
			marks := []string{string(field.Type)}
			if field.Required {
				marks = append(marks, "obligatoria")
			}
			if field.ID == roles.Derived {
				marks = append(marks, "calculada")
			}
			fmt.Printf("  %-24s %s (%s)%s\n",
				field.ID, field.Label, strings.Join(marks, ", "), groupSuffix(field.Groups))
			if len(field.Options) > 0 {
				fmt.Printf("  %-24s opciones: %s\n", "", strings.Join(field.Options, " | "))
			}
		}
	}
	return nil
}

func groupSuffix(groups []schema.Group) string {
	if len(groups) == 0 {
		return ""
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = string(g)
	}
	return " [" + strings.Join(names, ",") + "]"
}
