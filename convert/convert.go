package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modconv/pdx"
)

// Convert runs a conversion: it reads the source mod, creates the output mod
// and converts the maps into it. A nil collaborator skips its stage. A map
// missing from the source is noted as a problem in the returned summary.
func Convert(ctx context.Context, cfg *Config, scaffold Scaffolder, maps MapConverter) (*Summary, error) {
	c := *cfg
	c.defaults()
	if c.OutputDir == "" || c.ModName == "" {
		return nil, errors.New("output_dir and mod_name are required")
	}

	summary, err := Inventory(ctx, &c)
	if err != nil {
		return nil, err
	}

	modDir := filepath.Join(c.OutputDir, c.FlatName())
	if scaffold != nil {
		modDir, err = scaffold.Scaffold(ctx, c.OutputDir, c.FlatName(), c.ModName)
		if err != nil {
			return summary, fmt.Errorf("scaffold: %w", err)
		}
	} else {
		c.Logger.Info("convert: no scaffolder, writing into existing directory", "dir", modDir)
	}

	if maps == nil {
		c.Logger.Info("convert: no map converter, skipping maps")
		return summary, nil
	}

	t := c.Transform()
	stages := []struct {
		name     string
		src, dst string
		run      func(context.Context, string, string, Transform) error
	}{
		{"heightmap", "topology.bmp", "heightmap.png", maps.ConvertHeightmap},
		{"provinces", "provinces.bmp", "provinces.png", maps.ConvertProvinces},
		{"rivers", "rivers.bmp", "rivers.png", maps.ConvertRivers},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		src := filepath.Join(c.SourceDir, "map", st.src)
		dst := filepath.Join(modDir, "map_data", st.dst)
		c.Logger.Info("convert: map stage", "stage", st.name, "src", src, "dst", dst)
		if err := st.run(ctx, src, dst, t); err != nil {
			if errors.Is(err, pdx.ErrNotFound) {
				c.Logger.Warn("convert: source map missing", "stage", st.name, "src", src)
				summary.Problems = append(summary.Problems, fmt.Sprintf("%s: %v", st.name, err))
				continue
			}
			return summary, fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return summary, nil
}
