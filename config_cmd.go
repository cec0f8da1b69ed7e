package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runway28r/ms-graph-go/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	if resolvedCfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	if flagJSON {
		return printJSON(resolvedCfg)
	}

	return config.RenderEffective(resolvedCfg, os.Stdout)
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path in use",
		RunE:  runConfigPath,
	}
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	if resolvedCfg != nil && resolvedCfg.Path != "" {
		fmt.Println(resolvedCfg.Path)

		return nil
	}

	fmt.Println(config.DefaultConfigPath())
	statusf(flagQuiet, "(file does not exist; defaults are in effect)\n")

	return nil
}
