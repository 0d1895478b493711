package convert

import "context"

// Transform places the source map on the destination map.
type Transform struct {
	Destination Dimensions
	Scale       float64
	Offset      Offset
	// ToneCurve is applied to heightmap gray levels only.
	ToneCurve ToneCurve
}

// Transform returns the map placement of the config.
func (c *Config) Transform() Transform {
	return Transform{
		Destination: c.Destination,
		Scale:       c.Scale,
		Offset:      c.Offset,
		ToneCurve:   c.ToneCurve,
	}
}

// MapConverter converts the raster maps of the source mod. src and dst are
// file paths.
type MapConverter interface {
	ConvertHeightmap(ctx context.Context, src, dst string, t Transform) error
	ConvertProvinces(ctx context.Context, src, dst string, t Transform) error
	ConvertRivers(ctx context.Context, src, dst string, t Transform) error
}

// Scaffolder creates the output mod in outputDir/dirName and returns its
// directory. displayName is the name the launcher shows.
type Scaffolder interface {
	Scaffold(ctx context.Context, outputDir, dirName, displayName string) (string, error)
}
