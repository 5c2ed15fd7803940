package main

import (
	"fmt"

	"yunshu/internal/logging"
	"yunshu/internal/skills"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the skill documentation bundles shipped with this install",
	RunE:  runSkills,
}

func runSkills(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.GetDefault()
	logger.SetDebug(cfg.Debug)

	bundles, err := skills.List(cfg.SkillsDir, logger)
	if err != nil {
		return err
	}

	if len(bundles) == 0 {
		fmt.Println("no skill bundles found")
		return nil
	}
	for _, s := range bundles {
		if s.Version != "" {
			fmt.Printf("%-24s %-8s %s\n", s.Name, s.Version, s.Description)
		} else {
			fmt.Printf("%-24s %-8s %s\n", s.Name, "-", s.Description)
		}
	}
	return nil
}
