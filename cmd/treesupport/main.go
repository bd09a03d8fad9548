// Command treesupport runs the planner against a JSON scene
// descriptor and prints a summary of what it generated. It exists as
// a runnable demonstration of wiring the engine to a concrete
// slicedata.SliceDataStorage, not as a production slicer frontend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/latticeforge/treesupport/pkg/engine"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/slicedata"
)

func main() {
	scenePath := flag.String("scene", "", "path to a JSON scene descriptor")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "usage: treesupport -scene scene.json")
		os.Exit(2)
	}

	storage, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("treesupport: %v", err)
	}

	e := engine.New()
	if err := e.Run(context.Background(), storage); err != nil {
		log.Fatalf("treesupport: run failed: %v", err)
	}

	summarize(storage)
}

func summarize(storage *slicedata.MemStorage) {
	if !storage.Generated() {
		fmt.Println("no tree support generated")
		return
	}
	for l := 0; l <= storage.MaxFilledLayer(); l++ {
		parts := storage.SupportInfillParts(l)
		roof := storage.SupportRoof(l)
		floor := storage.SupportBottom(l)
		if len(parts) == 0 && roof.Empty() && floor.Empty() {
			continue
		}
		fmt.Printf("layer %d: %d support part(s), roof rings=%d, floor rings=%d\n",
			l, len(parts), len(roof), len(floor))
	}
}

// --- JSON scene descriptor ---

type jsonPoint [2]int64
type jsonPolygon []jsonPoint
type jsonPolygons []jsonPolygon

func (pp jsonPolygons) toGeom() geom.Polygons {
	out := make(geom.Polygons, len(pp))
	for i, ring := range pp {
		r := make(geom.Polygon, len(ring))
		for j, pt := range ring {
			r[j] = geom.Point{X: pt[0], Y: pt[1]}
		}
		out[i] = r
	}
	return out
}

type jsonConfig struct {
	SupportTreeEnable                 bool    `json:"support_tree_enable"`
	SupportTreeBranchDiameter         int64   `json:"support_tree_branch_diameter"`
	SupportTreeBranchDiameterAngleDeg float64 `json:"support_tree_branch_diameter_angle_deg"`
	SupportTreeBranchDistance         int64   `json:"support_tree_branch_distance"`
	SupportTreeAngleDeg               float64 `json:"support_tree_angle_deg"`
	SupportTreeCollisionResolution    int64   `json:"support_tree_collision_resolution"`
	SupportTreeWallCount              int     `json:"support_tree_wall_count"`
	SupportXYDistance                 int64   `json:"support_xy_distance"`
	SupportTopDistance                int64   `json:"support_top_distance"`
	SupportBottomDistance             int64   `json:"support_bottom_distance"`
	SupportLineWidth                  int64   `json:"support_line_width"`
	SupportAngleDeg                   float64 `json:"support_angle_deg"`
	SupportRoofEnable                 bool    `json:"support_roof_enable"`
	SupportRoofHeight                 int64   `json:"support_roof_height"`
	SupportBottomEnable               bool    `json:"support_bottom_enable"`
	SupportBottomHeight               int64   `json:"support_bottom_height"`
	SupportInterfaceSkipHeight        int64   `json:"support_interface_skip_height"`
	SupportType                       string  `json:"support_type"`
	LayerHeight                       int64   `json:"layer_height"`
	MachineShape                      string  `json:"machine_shape"`
	AdhesionType                      string  `json:"adhesion_type"`
	AdhesionLineWidth                 int64   `json:"adhesion_line_width"`
	AdhesionLineCount                 int     `json:"adhesion_line_count"`
	AdhesionMargin                    int64   `json:"adhesion_margin"`
}

func (c jsonConfig) toConfig() slicedata.Config {
	supportType := slicedata.SupportEverywhere
	if c.SupportType == "buildplate_only" {
		supportType = slicedata.SupportBuildplateOnly
	}
	machineShape := slicedata.ShapeRectangular
	if c.MachineShape == "elliptic" {
		machineShape = slicedata.ShapeElliptic
	}
	adhesion := slicedata.AdhesionNone
	switch c.AdhesionType {
	case "skirt":
		adhesion = slicedata.AdhesionSkirt
	case "brim":
		adhesion = slicedata.AdhesionBrim
	case "raft":
		adhesion = slicedata.AdhesionRaft
	}
	deg := math.Pi / 180
	return slicedata.Config{
		SupportTreeEnable:              c.SupportTreeEnable,
		SupportTreeBranchDiameter:      c.SupportTreeBranchDiameter,
		SupportTreeBranchDiameterAngle: c.SupportTreeBranchDiameterAngleDeg * deg,
		SupportTreeBranchDistance:      c.SupportTreeBranchDistance,
		SupportTreeAngle:               c.SupportTreeAngleDeg * deg,
		SupportTreeCollisionResolution: c.SupportTreeCollisionResolution,
		SupportTreeWallCount:           c.SupportTreeWallCount,
		SupportXYDistance:              c.SupportXYDistance,
		SupportTopDistance:             c.SupportTopDistance,
		SupportBottomDistance:          c.SupportBottomDistance,
		SupportLineWidth:               c.SupportLineWidth,
		SupportAngle:                   c.SupportAngleDeg * deg,
		SupportRoofEnable:              c.SupportRoofEnable,
		SupportRoofHeight:              c.SupportRoofHeight,
		SupportBottomEnable:            c.SupportBottomEnable,
		SupportBottomHeight:            c.SupportBottomHeight,
		SupportInterfaceSkipHeight:     c.SupportInterfaceSkipHeight,
		SupportType:                    supportType,
		LayerHeight:                    c.LayerHeight,
		MachineShape:                   machineShape,
		AdhesionType:                   adhesion,
		AdhesionLineWidth:              c.AdhesionLineWidth,
		AdhesionLineCount:              c.AdhesionLineCount,
		AdhesionMargin:                 c.AdhesionMargin,
	}
}

type jsonLayer struct {
	Outlines jsonPolygons `json:"outlines"`
}

type jsonMesh struct {
	Config    jsonConfig     `json:"config"`
	BBoxMin   jsonPoint      `json:"bbox_min"`
	BBoxMax   jsonPoint      `json:"bbox_max"`
	Overhangs []jsonPolygons `json:"overhangs"`
}

type jsonScene struct {
	Machine struct {
		Min   jsonPoint `json:"min"`
		Max   jsonPoint `json:"max"`
		Shape string    `json:"shape"`
	} `json:"machine"`
	GlobalConfig jsonConfig  `json:"global_config"`
	Layers       []jsonLayer `json:"layers"`
	Meshes       []jsonMesh  `json:"meshes"`
}

func loadScene(path string) (*slicedata.MemStorage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	var scene jsonScene
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}

	global := scene.GlobalConfig.toConfig()
	machMin := geom.Point{X: scene.Machine.Min[0], Y: scene.Machine.Min[1]}
	machMax := geom.Point{X: scene.Machine.Max[0], Y: scene.Machine.Max[1]}

	storage := slicedata.NewMemStorage(len(scene.Layers), global, machMin, machMax)
	for l, layer := range scene.Layers {
		storage.Layers[l].Outlines = layer.Outlines.toGeom()
	}

	for _, m := range scene.Meshes {
		overhangs := make([]geom.Polygons, len(scene.Layers))
		for l, oh := range m.Overhangs {
			if l < len(overhangs) {
				overhangs[l] = oh.toGeom()
			}
		}
		storage.Meshes = append(storage.Meshes, slicedata.MemMesh{
			Config:    m.Config.toConfig(),
			BBoxMin:   geom.Point{X: m.BBoxMin[0], Y: m.BBoxMin[1]},
			BBoxMax:   geom.Point{X: m.BBoxMax[0], Y: m.BBoxMax[1]},
			Overhangs: overhangs,
		})
	}

	return storage, nil
}
