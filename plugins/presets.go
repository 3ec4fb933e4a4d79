package plugins

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/linht/adrv-manager/adrv903x"
	"github.com/linht/adrv-manager/config"
	"gopkg.in/yaml.v3"
)

// OrderedMap represents a map that preserves insertion order
// It implements json.Marshaler to output keys in order
type OrderedMap struct {
	Keys   []string
	Values map[string]interface{}
}

// MarshalJSON implements json.Marshaler for OrderedMap
func (om *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, key := range om.Keys {
		if i > 0 {
			buf.WriteString(",")
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteString(":")
		valBytes, err := json.Marshal(om.Values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// yamlNodeToOrderedJSON converts a yaml.Node to an ordered JSON-compatible structure
func yamlNodeToOrderedJSON(node *yaml.Node) interface{} {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			return yamlNodeToOrderedJSON(node.Content[0])
		}
		return nil

	case yaml.MappingNode:
		om := &OrderedMap{
			Keys:   make([]string, 0, len(node.Content)/2),
			Values: make(map[string]interface{}),
		}
		for i := 0; i < len(node.Content); i += 2 {
			key := node.Content[i].Value
			om.Keys = append(om.Keys, key)
			om.Values[key] = yamlNodeToOrderedJSON(node.Content[i+1])
		}
		return om

	case yaml.SequenceNode:
		result := make([]interface{}, len(node.Content))
		for i, item := range node.Content {
			result[i] = yamlNodeToOrderedJSON(item)
		}
		return result

	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return nil
		case "!!bool":
			return node.Value == "true"
		case "!!int":
			var v int64
			if err := node.Decode(&v); err == nil {
				return v
			}
			return node.Value
		case "!!float":
			var v float64
			if err := node.Decode(&v); err == nil {
				return v
			}
			return node.Value
		default:
			return node.Value
		}

	case yaml.AliasNode:
		if node.Alias != nil {
			return yamlNodeToOrderedJSON(node.Alias)
		}
		return nil

	default:
		return node.Value
	}
}

// PresetConfig is the factory config of the presets plugin
type PresetConfig struct {
	Transceiver *Transceiver
	Path        string
}

// PresetPlugin stores named data format presets in a YAML file and applies
// them to the transceiver
type PresetPlugin struct {
	dev  *Transceiver
	path string
	mu   sync.Mutex
}

// NewPresetPlugin creates a new preset plugin instance
func NewPresetPlugin(cfg PresetConfig) (*PresetPlugin, error) {
	if cfg.Transceiver == nil {
		return nil, errors.New("transceiver cannot be nil")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("presets path is required in presets plugin configuration")
	}

	return &PresetPlugin{
		dev:  cfg.Transceiver,
		path: cfg.Path,
	}, nil
}

// Name returns the plugin identifier
func (p *PresetPlugin) Name() string {
	return "presets"
}

// RegisterRoutes adds the plugin's HTTP routes
func (p *PresetPlugin) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/presets")

	api.Get("/", p.listPresets)
	api.Get("/file", p.loadFile)
	api.Post("/", p.savePreset)
	api.Post("/capture", p.capturePreset)
	api.Get("/:name", p.getPreset)
	api.Delete("/:name", p.deletePreset)
	api.Post("/:name/apply", p.applyPreset)
}

// Shutdown performs cleanup
func (p *PresetPlugin) Shutdown() error {
	return nil
}

// load reads the preset file; a missing file holds no presets
func (p *PresetPlugin) load() ([]config.Preset, error) {
	presets, err := config.LoadPresets(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return presets, err
}

// upsert replaces the preset with the same name or appends it
func upsert(presets []config.Preset, preset config.Preset) []config.Preset {
	for i := range presets {
		if presets[i].Name == preset.Name {
			presets[i] = preset
			return presets
		}
	}
	return append(presets, preset)
}

// listPresets handles GET /api/presets
func (p *PresetPlugin) listPresets(c *fiber.Ctx) error {
	p.mu.Lock()
	presets, err := p.load()
	p.mu.Unlock()
	if err != nil {
		return SendError(c, 500, err)
	}

	result := make([]fiber.Map, len(presets))
	for i, preset := range presets {
		result[i] = fiber.Map{
			"name":        preset.Name,
			"description": preset.Description,
			"entries":     len(preset.Formats),
		}
	}
	return SendSuccess(c, result, "")
}

// loadFile handles GET /api/presets/file, returning the file in key order
func (p *PresetPlugin) loadFile(c *fiber.Ctx) error {
	p.mu.Lock()
	data, err := os.ReadFile(p.path)
	p.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return SendSuccess(c, []interface{}{}, "")
	}
	if err != nil {
		return SendError(c, 500, fmt.Errorf("failed to read presets file: %w", err))
	}

	var rootNode yaml.Node
	if err := yaml.Unmarshal(data, &rootNode); err != nil {
		return SendError(c, 500, fmt.Errorf("failed to parse presets file: %w", err))
	}

	return SendSuccess(c, yamlNodeToOrderedJSON(&rootNode), "Presets loaded successfully")
}

// getPreset handles GET /api/presets/:name
func (p *PresetPlugin) getPreset(c *fiber.Ctx) error {
	p.mu.Lock()
	presets, err := p.load()
	p.mu.Unlock()
	if err != nil {
		return SendError(c, 500, err)
	}

	preset, ok := config.FindPreset(presets, c.Params("name"))
	if !ok {
		return SendErrorMessage(c, 404, "Preset not found")
	}
	return SendSuccess(c, preset, "")
}

// savePreset handles POST /api/presets
func (p *PresetPlugin) savePreset(c *fiber.Ctx) error {
	var preset config.Preset
	if err := c.BodyParser(&preset); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}
	if preset.Name == "" {
		return SendErrorMessage(c, 400, "Preset name required")
	}
	if _, err := preset.Configs(); err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	if err := p.store(preset); err != nil {
		return SendError(c, 500, err)
	}

	slog.Info("Preset saved", "name", preset.Name, "entries", len(preset.Formats))
	return SendSuccess(c, nil, "Preset saved successfully")
}

func (p *PresetPlugin) store(preset config.Preset) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	presets, err := p.load()
	if err != nil {
		return err
	}
	return config.SavePresets(p.path, upsert(presets, preset))
}

// deletePreset handles DELETE /api/presets/:name
func (p *PresetPlugin) deletePreset(c *fiber.Ctx) error {
	name := c.Params("name")

	p.mu.Lock()
	defer p.mu.Unlock()

	presets, err := p.load()
	if err != nil {
		return SendError(c, 500, err)
	}

	kept := presets[:0]
	for _, preset := range presets {
		if preset.Name != name {
			kept = append(kept, preset)
		}
	}
	if len(kept) == len(presets) {
		return SendErrorMessage(c, 404, "Preset not found")
	}

	if err := config.SavePresets(p.path, kept); err != nil {
		return SendError(c, 500, err)
	}

	slog.Info("Preset deleted", "name", name)
	return SendSuccess(c, nil, "Preset deleted successfully")
}

// applyPreset handles POST /api/presets/:name/apply
func (p *PresetPlugin) applyPreset(c *fiber.Ctx) error {
	p.mu.Lock()
	presets, err := p.load()
	p.mu.Unlock()
	if err != nil {
		return SendError(c, 500, err)
	}

	preset, ok := config.FindPreset(presets, c.Params("name"))
	if !ok {
		return SendErrorMessage(c, 404, "Preset not found")
	}

	if err := ApplyPreset(p.dev, preset); err != nil {
		return SendDeviceError(c, err)
	}

	slog.Info("Preset applied", "name", preset.Name)
	return SendSuccess(c, nil, fmt.Sprintf("Preset %s applied", preset.Name))
}

// capturePreset handles POST /api/presets/capture. It reads back the current
// data format of each listed channel and stores it as a preset.
func (p *PresetPlugin) capturePreset(c *fiber.Ctx) error {
	var req struct {
		Name        string             `json:"name"`
		Description string             `json:"description"`
		Channels    []adrv903x.Channel `json:"channels"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}
	if req.Name == "" || len(req.Channels) == 0 {
		return SendErrorMessage(c, 400, "Preset name and channels required")
	}

	preset := config.Preset{Name: req.Name, Description: req.Description}
	err := p.dev.Run("RxDataFormatGet", func(d *adrv903x.Device) error {
		for _, ch := range req.Channels {
			cfg, err := d.RxDataFormatGet(ch)
			if err != nil {
				return err
			}
			preset.Formats = append(preset.Formats, config.FormatSpecFrom(cfg))
		}
		return nil
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	if err := p.store(preset); err != nil {
		return SendError(c, 500, err)
	}

	slog.Info("Preset captured", "name", preset.Name, "channels", len(req.Channels))
	return SendSuccess(c, preset, "Preset captured successfully")
}

// ApplyPreset converts preset and programs it in one RxDataFormatSet call
func ApplyPreset(dev *Transceiver, preset *config.Preset) error {
	cfgs, err := preset.Configs()
	if err != nil {
		return fmt.Errorf("%w: %v", adrv903x.ErrInvalidParam, err)
	}
	return dev.Run("RxDataFormatSet", func(d *adrv903x.Device) error {
		return d.RxDataFormatSet(cfgs)
	})
}

// Register the plugin
func init() {
	Register("presets", func(cfg interface{}) (Plugin, error) {
		pc, ok := cfg.(PresetConfig)
		if !ok {
			return nil, errors.New("invalid config for presets plugin: expected PresetConfig")
		}
		return NewPresetPlugin(pc)
	})
}
