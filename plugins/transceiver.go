package plugins

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/linht/adrv-manager/adrv903x"
	"github.com/linht/adrv-manager/config"
)

// TransceiverPlugin exposes the Rx/ORx data formatter over HTTP.
// Every request opens a transient link through the shared Transceiver.
type TransceiverPlugin struct {
	dev *Transceiver
}

// NewTransceiverPlugin creates a new transceiver plugin instance
func NewTransceiverPlugin(dev *Transceiver) (*TransceiverPlugin, error) {
	if dev == nil {
		return nil, errors.New("transceiver cannot be nil")
	}

	slog.Info("Transceiver plugin initializing", "transport", dev.Transport())
	return &TransceiverPlugin{dev: dev}, nil
}

// Name returns the plugin identifier
func (p *TransceiverPlugin) Name() string {
	return "transceiver"
}

// RegisterRoutes adds the plugin's HTTP routes
func (p *TransceiverPlugin) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/transceiver")

	// Device control endpoints
	api.Get("/status", p.handleStatus)
	api.Get("/info", p.handleInfo)
	api.Post("/reset", p.handleReset)

	// Data format endpoints
	api.Post("/dataformat", p.handleSetDataFormat)
	api.Get("/dataformat/:channel", p.handleGetDataFormat)
	api.Get("/dataformat/:channel/mode", p.handleGetMode)
	api.Get("/dataformat/:channel/integer", p.handleGetInteger)
	api.Get("/dataformat/:channel/float", p.handleGetFloatingPoint)
	api.Get("/dataformat/:channel/embovld", p.handleGetEmbOverload)
	api.Post("/gaindisable", p.handleDisableGainComp)

	// Gain endpoints
	api.Post("/gain", p.handleSetGain)
	api.Get("/gain/:channel", p.handleGetGain)
	api.Post("/gain/minmax", p.handleSetMinMaxGain)
	api.Post("/gaintable", p.handleWriteGainTable)
	api.Post("/gaintable/upload", p.handleGainTableUpload)
	api.Get("/gaintable/:channel", p.handleReadGainTable)
	api.Get("/gaintable/:channel/csv", p.handleGainTableDownload)

	// Detector and meter endpoints
	api.Post("/hb2", p.handleSetHb2)
	api.Get("/hb2/:channel", p.handleGetHb2)
	api.Post("/orx/atten", p.handleSetOrxAtten)
	api.Get("/orx/atten/:channel", p.handleGetOrxAtten)
	api.Post("/orx/decpower", p.handleSetOrxDecPower)
	api.Get("/orx/decpower/:channel", p.handleGetOrxDecPower)
	api.Get("/lo/:channel", p.handleGetLoSource)
	api.Post("/decpower", p.handleSetDecPower)
	api.Get("/decpower/:channel", p.handleGetDecPower)
	api.Get("/decpower/:channel/value", p.handleGetDecPowerValue)

	// CDDC and diagnostics
	api.Post("/cddc", p.handleSetCddc)
	api.Get("/cddc/:channel", p.handleGetCddc)
	api.Get("/registers/:channel", p.handleRegisterDump)

	if hub := p.dev.Trace(); hub != nil {
		api.Get("/trace", websocket.New(hub.handleTrace))
	}

	slog.Info("Transceiver plugin routes registered")
}

// Shutdown performs cleanup
func (p *TransceiverPlugin) Shutdown() error {
	return p.dev.Close()
}

// parseChannelList parses "rx0,rx1 orx0" into a mask
func parseChannelList(s string) (adrv903x.ChannelMask, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return 0, errors.New("channels required")
	}
	var mask adrv903x.ChannelMask
	for _, f := range fields {
		ch, err := adrv903x.ParseChannel(f)
		if err != nil {
			return 0, err
		}
		mask |= ch.Mask()
	}
	return mask, nil
}

// channelsOr returns the mask of chs, or fallback when chs is empty
func channelsOr(chs []adrv903x.Channel, fallback adrv903x.ChannelMask) adrv903x.ChannelMask {
	if len(chs) == 0 {
		return fallback
	}
	return adrv903x.MaskOf(chs...)
}

// Device control handlers

func (p *TransceiverPlugin) handleStatus(c *fiber.Ctx) error {
	state := p.dev.State()

	modes := make(map[string]string)
	err := p.dev.Run("GetMode", func(d *adrv903x.Device) error {
		for _, ch := range state.InitializedChannels.Channels() {
			mode, err := d.GetMode(ch)
			if err != nil {
				slog.Debug("Mode unavailable", "channel", ch, "error", err)
				modes[ch.String()] = "unknown"
				continue
			}
			modes[ch.String()] = mode.String()
			if m := p.dev.Metrics(); m != nil {
				m.ObserveMode(ch, mode)
			}
		}
		return nil
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	minGain := make(map[string]uint8)
	maxGain := make(map[string]uint8)
	for _, ch := range state.InitializedChannels.Rx().Channels() {
		i := bits.TrailingZeros32(uint32(ch))
		minGain[ch.String()] = state.MinGainIndex[i]
		maxGain[ch.String()] = state.MaxGainIndex[i]
	}

	return SendSuccess(c, fiber.Map{
		"transport":            p.dev.Transport(),
		"initialized_channels": state.InitializedChannels.Channels(),
		"profiles":             state.ProfilesValid.String(),
		"silicon_revision":     fmt.Sprintf("0x%02X", state.SiRev),
		"modes":                modes,
		"min_gain_index":       minGain,
		"max_gain_index":       maxGain,
		"rx_3bit_slicer":       state.Rx3BitSlicerMode.Channels(),
	}, "")
}

func (p *TransceiverPlugin) handleInfo(c *fiber.Ctx) error {
	info := fiber.Map{"transport": p.dev.Transport()}

	err := p.dev.WithLink(func(link Link) error {
		spiDev, ok := link.(*SPIDevice)
		if !ok {
			return nil
		}
		chip, err := spiDev.CheckDevice()
		if err != nil {
			return err
		}
		regs, err := spiDev.ReadDirectRegisters()
		if err != nil {
			return err
		}

		regList := make([]fiber.Map, 0, len(regs))
		for _, addr := range directRegisterOrder {
			regList = append(regList, fiber.Map{
				"address":     fmt.Sprintf("0x%04X", addr),
				"value":       fmt.Sprintf("0x%02X", regs[addr]),
				"description": RegisterDescriptions[addr],
			})
		}
		info["chip"] = chip
		info["device"] = spiDev.DeviceInfo()
		info["registers"] = regList
		return nil
	})
	if err != nil {
		slog.Error("Failed to identify transceiver", "error", err)
		return SendError(c, 502, err)
	}

	return SendSuccess(c, info, "")
}

func (p *TransceiverPlugin) handleReset(c *fiber.Ctx) error {
	if err := p.dev.Reset(); err != nil {
		slog.Error("Failed to reset transceiver", "error", err)
		return SendError(c, 500, err)
	}
	return SendSuccess(c, nil, "Transceiver reset successful")
}

// Data format handlers

func (p *TransceiverPlugin) handleSetDataFormat(c *fiber.Ctx) error {
	var req struct {
		Formats []config.FormatSpec `json:"formats"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	cfgs := make([]adrv903x.RxDataFormatConfig, 0, len(req.Formats))
	var touched adrv903x.ChannelMask
	for i, f := range req.Formats {
		cfg, err := f.ToConfig()
		if err != nil {
			return SendErrorMessage(c, 400, fmt.Sprintf("format %d: %v", i, err))
		}
		cfgs = append(cfgs, cfg)
		touched |= cfg.ChannelMask
	}

	err := p.dev.Run("RxDataFormatSet", func(d *adrv903x.Device) error {
		if err := d.RxDataFormatSet(cfgs); err != nil {
			return err
		}
		p.observeModes(d, touched)
		return nil
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	slog.Info("Data format applied", "entries", len(cfgs), "channels", touched)
	return SendSuccess(c, nil, fmt.Sprintf("Applied %d data format entries", len(cfgs)))
}

// observeModes refreshes the mode gauge of every channel in mask
func (p *TransceiverPlugin) observeModes(d *adrv903x.Device, mask adrv903x.ChannelMask) {
	m := p.dev.Metrics()
	if m == nil {
		return
	}
	for _, ch := range mask.Channels() {
		if mode, err := d.GetMode(ch); err == nil {
			m.ObserveMode(ch, mode)
		}
	}
}

func (p *TransceiverPlugin) handleGetDataFormat(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var cfg adrv903x.RxDataFormatConfig
	err = p.dev.Run("RxDataFormatGet", func(d *adrv903x.Device) error {
		var err error
		cfg, err = d.RxDataFormatGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, config.FormatSpecFrom(cfg), "")
}

func (p *TransceiverPlugin) handleGetMode(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var mode adrv903x.DataFormatMode
	err = p.dev.Run("GetMode", func(d *adrv903x.Device) error {
		var err error
		mode, err = d.GetMode(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}
	if m := p.dev.Metrics(); m != nil {
		m.ObserveMode(ch, mode)
	}

	return SendSuccess(c, fiber.Map{"channel": ch, "mode": mode}, "")
}

func (p *TransceiverPlugin) handleGetInteger(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var ic adrv903x.IntegerConfig
	var sc adrv903x.SlicerConfig
	err = p.dev.Run("RxDataFormatIntegerGet", func(d *adrv903x.Device) error {
		var err error
		ic, sc, err = d.RxDataFormatIntegerGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{"integer": ic, "slicer": sc}, "")
}

func (p *TransceiverPlugin) handleGetFloatingPoint(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var fp adrv903x.FloatingPointConfig
	err = p.dev.Run("RxDataFormatFloatingPointGet", func(d *adrv903x.Device) error {
		var err error
		fp, err = d.RxDataFormatFloatingPointGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fp, "")
}

func (p *TransceiverPlugin) handleGetEmbOverload(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var mc adrv903x.EmbOverloadMonitorConfig
	err = p.dev.Run("RxDataFormatEmbOvldMonitorGet", func(d *adrv903x.Device) error {
		var err error
		mc, err = d.RxDataFormatEmbOvldMonitorGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, mc, "")
}

func (p *TransceiverPlugin) handleDisableGainComp(c *fiber.Ctx) error {
	var req struct {
		Channels []adrv903x.Channel `json:"channels"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}
	mask := adrv903x.MaskOf(req.Channels...)

	err := p.dev.Run("DisableGainComp", func(d *adrv903x.Device) error {
		if err := d.DisableGainComp(mask); err != nil {
			return err
		}
		p.observeModes(d, mask)
		return nil
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "Gain compensation disabled")
}

// Gain handlers

func (p *TransceiverPlugin) handleSetGain(c *fiber.Ctx) error {
	var req struct {
		Gains []struct {
			adrv903x.RxGain
			Channels []adrv903x.Channel `json:"channels"`
		} `json:"gains"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	gains := make([]adrv903x.RxGain, len(req.Gains))
	for i, g := range req.Gains {
		gains[i] = g.RxGain
		gains[i].ChannelMask = channelsOr(g.Channels, g.ChannelMask)
	}

	err := p.dev.Run("RxGainSet", func(d *adrv903x.Device) error {
		return d.RxGainSet(gains)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "Gain index set successfully")
}

func (p *TransceiverPlugin) handleGetGain(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var index uint8
	err = p.dev.Run("RxGainGet", func(d *adrv903x.Device) error {
		var err error
		index, err = d.RxGainGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{"channel": ch, "gain_index": index}, "")
}

func (p *TransceiverPlugin) handleSetMinMaxGain(c *fiber.Ctx) error {
	var req struct {
		Channels []adrv903x.Channel `json:"channels"`
		MinIndex uint8              `json:"min_index"`
		MaxIndex uint8              `json:"max_index"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	err := p.dev.Run("RxMinMaxGainIndexSet", func(d *adrv903x.Device) error {
		return d.RxMinMaxGainIndexSet(adrv903x.MaskOf(req.Channels...), req.MinIndex, req.MaxIndex)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "Gain index range set successfully")
}

func (p *TransceiverPlugin) handleWriteGainTable(c *fiber.Ctx) error {
	var req struct {
		Channels        []adrv903x.Channel      `json:"channels"`
		GainIndexOffset uint8                   `json:"gain_index_offset"`
		Rows            []adrv903x.GainTableRow `json:"rows"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	err := p.dev.Run("RxGainTableWrite", func(d *adrv903x.Device) error {
		return d.RxGainTableWrite(adrv903x.MaskOf(req.Channels...), req.GainIndexOffset, req.Rows)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	slog.Info("Gain table written", "channels", req.Channels, "offset", req.GainIndexOffset, "rows", len(req.Rows))
	return SendSuccess(c, nil, fmt.Sprintf("Wrote %d gain table rows", len(req.Rows)))
}

func (p *TransceiverPlugin) handleReadGainTable(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var offset uint8
	var rows []adrv903x.GainTableRow
	err = p.dev.Run("RxGainTableRead", func(d *adrv903x.Device) error {
		var err error
		offset, rows, err = readGainTable(c, d, ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{
		"channel":           ch,
		"gain_index_offset": offset,
		"rows":              rows,
	}, "")
}

// Detector and meter handlers

func (p *TransceiverPlugin) handleSetHb2(c *fiber.Ctx) error {
	var req struct {
		Configs []struct {
			adrv903x.Hb2OverloadCfg
			Channels []adrv903x.Channel `json:"channels"`
		} `json:"configs"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	cfgs := make([]adrv903x.Hb2OverloadCfg, len(req.Configs))
	for i, cfg := range req.Configs {
		cfgs[i] = cfg.Hb2OverloadCfg
		cfgs[i].ChannelMask = channelsOr(cfg.Channels, cfg.ChannelMask)
	}

	err := p.dev.Run("RxHb2OverloadCfgSet", func(d *adrv903x.Device) error {
		return d.RxHb2OverloadCfgSet(cfgs)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "HB2 overload detector configured")
}

func (p *TransceiverPlugin) handleGetHb2(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var cfg adrv903x.Hb2OverloadCfg
	err = p.dev.Run("RxHb2OverloadCfgGet", func(d *adrv903x.Device) error {
		var err error
		cfg, err = d.RxHb2OverloadCfgGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, cfg, "")
}

func (p *TransceiverPlugin) handleSetOrxAtten(c *fiber.Ctx) error {
	var req struct {
		Channels []adrv903x.Channel `json:"channels"`
		AttenDb  uint8              `json:"atten_db"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	err := p.dev.Run("OrxAttenSet", func(d *adrv903x.Device) error {
		return d.OrxAttenSet(adrv903x.MaskOf(req.Channels...), req.AttenDb)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{"atten_db": req.AttenDb}, "ORx attenuation set successfully")
}

func (p *TransceiverPlugin) handleGetOrxAtten(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var atten uint8
	err = p.dev.Run("OrxAttenGet", func(d *adrv903x.Device) error {
		var err error
		atten, err = d.OrxAttenGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{"channel": ch, "atten_db": atten}, "")
}

func (p *TransceiverPlugin) handleGetLoSource(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var lo adrv903x.LoSource
	err = p.dev.Run("RxLoSourceGet", func(d *adrv903x.Device) error {
		var err error
		lo, err = d.RxLoSourceGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{"channel": ch, "lo_source": lo}, "")
}

func (p *TransceiverPlugin) handleSetDecPower(c *fiber.Ctx) error {
	var req struct {
		Configs []struct {
			adrv903x.DecPowerCfg
			Channels []adrv903x.Channel `json:"channels"`
		} `json:"configs"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	cfgs := make([]adrv903x.DecPowerCfg, len(req.Configs))
	for i, cfg := range req.Configs {
		cfgs[i] = cfg.DecPowerCfg
		cfgs[i].ChannelMask = channelsOr(cfg.Channels, cfg.ChannelMask)
	}

	err := p.dev.Run("DecPowerCfgSet", func(d *adrv903x.Device) error {
		return d.DecPowerCfgSet(cfgs)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "Decimated power meters configured")
}

// decPowerBlock parses the ?block= query, defaulting to the main meter
func decPowerBlock(q string) (adrv903x.DecPowerBlock, error) {
	block := adrv903x.DecPowerMain
	if q == "" {
		return block, nil
	}
	err := block.UnmarshalText([]byte(q))
	return block, err
}

func (p *TransceiverPlugin) handleGetDecPower(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}
	block, err := decPowerBlock(c.Query("block"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var cfg adrv903x.DecPowerCfg
	err = p.dev.Run("DecPowerCfgGet", func(d *adrv903x.Device) error {
		var err error
		cfg, err = d.DecPowerCfgGet(ch, block)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, cfg, "")
}

func (p *TransceiverPlugin) handleGetDecPowerValue(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}
	block, err := decPowerBlock(c.Query("block"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var mdb int32
	err = p.dev.Run("DecPowerGet", func(d *adrv903x.Device) error {
		var err error
		mdb, err = d.DecPowerGet(ch, block)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{
		"channel":     ch,
		"block":       block,
		"power_mdbfs": mdb,
	}, "")
}

func (p *TransceiverPlugin) handleSetOrxDecPower(c *fiber.Ctx) error {
	var req struct {
		Configs []struct {
			adrv903x.OrxDecPowerCfg
			Channels []adrv903x.Channel `json:"channels"`
		} `json:"configs"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	cfgs := make([]adrv903x.OrxDecPowerCfg, len(req.Configs))
	for i, cfg := range req.Configs {
		cfgs[i] = cfg.OrxDecPowerCfg
		cfgs[i].ChannelMask = channelsOr(cfg.Channels, cfg.ChannelMask)
	}

	err := p.dev.Run("OrxDecPowerCfgSet", func(d *adrv903x.Device) error {
		return d.OrxDecPowerCfgSet(cfgs)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "ORx decimated power meters configured")
}

func (p *TransceiverPlugin) handleGetOrxDecPower(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var cfg adrv903x.OrxDecPowerCfg
	err = p.dev.Run("OrxDecPowerCfgGet", func(d *adrv903x.Device) error {
		var err error
		cfg, err = d.OrxDecPowerCfgGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, cfg, "")
}

// CDDC and diagnostics handlers

func (p *TransceiverPlugin) handleSetCddc(c *fiber.Ctx) error {
	var req struct {
		Channels []adrv903x.Channel     `json:"channels"`
		Integer  adrv903x.IntegerConfig `json:"integer"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	err := p.dev.Run("CddcDataFormatSet", func(d *adrv903x.Device) error {
		return d.CddcDataFormatSet(adrv903x.MaskOf(req.Channels...), req.Integer)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, nil, "CDDC data format set successfully")
}

func (p *TransceiverPlugin) handleGetCddc(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var ic adrv903x.IntegerConfig
	err = p.dev.Run("CddcDataFormatGet", func(d *adrv903x.Device) error {
		var err error
		ic, err = d.CddcDataFormatGet(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, ic, "")
}

func (p *TransceiverPlugin) handleRegisterDump(c *fiber.Ctx) error {
	ch, err := adrv903x.ParseChannel(c.Params("channel"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	var fields []adrv903x.FieldValue
	err = p.dev.Run("RegisterDump", func(d *adrv903x.Device) error {
		var err error
		fields, err = d.RegisterDump(ch)
		return err
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	return SendSuccess(c, fiber.Map{
		"channel": ch,
		"fields":  fields,
		"count":   len(fields),
	}, "")
}

// Register the plugin
func init() {
	Register("transceiver", func(cfg interface{}) (Plugin, error) {
		dev, ok := cfg.(*Transceiver)
		if !ok {
			return nil, errors.New("invalid config for transceiver plugin: expected *Transceiver")
		}
		return NewTransceiverPlugin(dev)
	})
}
