package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modconv/pdx"
)

// DirScaffolder creates an empty mod: the mod directory with its top-level
// folders, a descriptor.mod inside and a launcher <name>.mod next to it.
type DirScaffolder struct {
	// SupportedVersion is the game version pattern of the descriptor.
	SupportedVersion string
}

var modFolders = []string{"map_data", "common", "history", "localization"}

// Scaffold implements Scaffolder.
func (s DirScaffolder) Scaffold(ctx context.Context, outputDir, dirName, displayName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(outputDir, dirName)
	for _, sub := range modFolders {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", sub, err)
		}
	}

	version := s.SupportedVersion
	if version == "" {
		version = "1.*"
	}
	desc := pdx.NewDocument(
		pdx.Node{Key: "version", Value: pdx.String("1.0")},
		pdx.Node{Key: "name", Value: pdx.String(displayName)},
		pdx.Node{Key: "supported_version", Value: pdx.String(version)},
	)
	data, err := pdx.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("descriptor: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "descriptor.mod"), data, 0o644); err != nil {
		return "", err
	}

	nodes := append([]pdx.Node{}, desc.Nodes...)
	launcher := pdx.NewDocument(append(nodes, pdx.Node{Key: "path", Value: pdx.String("mod/" + dirName)})...)
	data, err = pdx.Marshal(launcher)
	if err != nil {
		return "", fmt.Errorf("launcher descriptor: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, dirName+".mod"), data, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}
