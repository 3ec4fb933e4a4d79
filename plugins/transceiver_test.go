package plugins

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/linht/adrv-manager/adrv903x"
)

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
}

func newTestTransceiver(t *testing.T, opts ...TransceiverOption) (*Transceiver, *adrv903x.RegisterFile) {
	t.Helper()
	regs := adrv903x.NewRegisterFile()
	opts = append([]TransceiverOption{
		WithTransport("sim"),
		WithResetHook(func() error { regs.Reset(); return nil }),
	}, opts...)
	dev, err := NewTransceiver(SimOpener(regs), adrv903x.NewState(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return dev, regs
}

func newTestApp(t *testing.T, dev *Transceiver) *fiber.App {
	t.Helper()
	p, err := NewTransceiverPlugin(dev)
	if err != nil {
		t.Fatal(err)
	}
	app := fiber.New()
	p.RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, testResponse) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			rd = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out testResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("%s %s: bad body %q", method, path, raw)
	}
	return resp.StatusCode, out
}

func TestDataFormatEndpoints(t *testing.T) {
	dev, _ := newTestTransceiver(t)
	app := newTestApp(t, dev)

	status, resp := doJSON(t, app, "POST", "/api/transceiver/dataformat", `{
		"formats": [
			{"channels": ["rx0"], "mode": "int_slicer_3pin",
			 "integer": {"sample_resolution": "16bit_twos", "embedded_bits": "2bit_msb_3slicer"},
			 "slicer": {"int_step_size": "2db", "int_gpios": ["gpio0", "gpio1", "gpio2"]}},
			{"channels": ["rx1"], "mode": "floating_point",
			 "floating_point": {"round_mode": "rtz", "exponent_bits": "4bit", "atten_steps": "-6db"}}
		]
	}`)
	if status != 200 || !resp.Success {
		t.Fatalf("set: %d %+v", status, resp)
	}

	status, resp = doJSON(t, app, "GET", "/api/transceiver/dataformat/rx0/mode", nil)
	if status != 200 {
		t.Fatalf("mode: %d %+v", status, resp)
	}
	var mode struct {
		Mode string `json:"mode"`
	}
	json.Unmarshal(resp.Data, &mode)
	if mode.Mode != "int_slicer_3pin" {
		t.Errorf("rx0 mode = %s", mode.Mode)
	}

	status, resp = doJSON(t, app, "GET", "/api/transceiver/dataformat/rx1", nil)
	if status != 200 {
		t.Fatalf("get: %d %+v", status, resp)
	}
	var spec struct {
		Mode          string `json:"mode"`
		FloatingPoint struct {
			RoundMode  string `json:"round_mode"`
			AttenSteps string `json:"atten_steps"`
		} `json:"floating_point"`
	}
	json.Unmarshal(resp.Data, &spec)
	if spec.Mode != "floating_point" || spec.FloatingPoint.RoundMode != "rtz" || spec.FloatingPoint.AttenSteps != "-6db" {
		t.Errorf("rx1 readback = %+v", spec)
	}

	status, resp = doJSON(t, app, "GET", "/api/transceiver/dataformat/rx0/integer", nil)
	if status != 200 || !strings.Contains(string(resp.Data), `"gpio2"`) {
		t.Errorf("integer readback: %d %s", status, resp.Data)
	}

	status, _ = doJSON(t, app, "POST", "/api/transceiver/gaindisable", `{"channels": ["rx0", "rx1"]}`)
	if status != 200 {
		t.Fatalf("gaindisable: %d", status)
	}
	_, resp = doJSON(t, app, "GET", "/api/transceiver/dataformat/rx1/mode", nil)
	json.Unmarshal(resp.Data, &mode)
	if mode.Mode != "gain_comp_disabled" {
		t.Errorf("rx1 mode after disable = %s", mode.Mode)
	}
}

func TestDeviceErrorStatus(t *testing.T) {
	dev, _ := newTestTransceiver(t)
	app := newTestApp(t, dev)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{"floating point on orx", "POST", "/api/transceiver/dataformat",
			`{"formats": [{"channels": ["orx0"], "mode": "floating_point", "floating_point": {}}]}`, 400, "invalid_param"},
		{"external slicer", "POST", "/api/transceiver/dataformat",
			`{"formats": [{"channels": ["rx0"], "mode": "ext_slicer"}]}`, 501, "not_implemented"},
		{"orx atten range", "POST", "/api/transceiver/orx/atten",
			`{"channels": ["orx0"], "atten_db": 17}`, 400, "invalid_param"},
		{"unknown channel", "GET", "/api/transceiver/gain/rx9", "", 400, ""},
		{"bad enum", "POST", "/api/transceiver/dataformat",
			`{"formats": [{"channels": ["rx0"], "mode": "turbo"}]}`, 400, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body interface{}
			if tt.body != "" {
				body = tt.body
			}
			status, resp := doJSON(t, app, tt.method, tt.path, body)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.status, resp)
			}
			if resp.Success || resp.Kind != tt.kind {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&adrv903x.Error{Kind: adrv903x.ErrInvalidParam, Op: "x"}, 400},
		{&adrv903x.Error{Kind: adrv903x.ErrConfigInconsistent, Op: "x"}, 400},
		{&adrv903x.Error{Kind: adrv903x.ErrNotImplemented, Op: "x"}, 501},
		{fmt.Errorf("wrapped: %w", &adrv903x.Error{Kind: adrv903x.ErrRegisterIO, Op: "x"}), 502},
		{errors.New("other"), 500},
	}
	for _, tt := range tests {
		if status, _ := errorStatus(tt.err); status != tt.status {
			t.Errorf("%v: status %d, want %d", tt.err, status, tt.status)
		}
	}
}

func TestGainEndpoints(t *testing.T) {
	dev, regs := newTestTransceiver(t)
	app := newTestApp(t, dev)

	rows := []adrv903x.GainTableRow{
		{RxFeGain: 10, ExtControl: 1, PhaseOffset: 100, DigGain: 20},
		{RxFeGain: 11, ExtControl: 2, PhaseOffset: 200, DigGain: -30},
		{RxFeGain: 12, ExtControl: 3, PhaseOffset: 300, DigGain: 0},
	}
	status, resp := doJSON(t, app, "POST", "/api/transceiver/gaintable", fiber.Map{
		"channels":          []string{"rx2"},
		"gain_index_offset": 250,
		"rows":              rows,
	})
	if status != 200 {
		t.Fatalf("write table: %d %+v", status, resp)
	}

	state := dev.State()
	if state.MinGainIndex[2] != 248 || state.MaxGainIndex[2] != 250 {
		t.Errorf("bounds = %d..%d", state.MinGainIndex[2], state.MaxGainIndex[2])
	}

	status, resp = doJSON(t, app, "GET", "/api/transceiver/gaintable/rx2", nil)
	if status != 200 {
		t.Fatalf("read table: %d %+v", status, resp)
	}
	var table struct {
		Offset uint8                   `json:"gain_index_offset"`
		Rows   []adrv903x.GainTableRow `json:"rows"`
	}
	json.Unmarshal(resp.Data, &table)
	if table.Offset != 250 || len(table.Rows) != 3 || table.Rows[1] != rows[1] {
		t.Errorf("table = %+v", table)
	}

	status, _ = doJSON(t, app, "POST", "/api/transceiver/gain", `{"gains": [{"channels": ["rx2"], "gain_index": 249}]}`)
	if status != 200 {
		t.Fatalf("set gain: %d", status)
	}
	status, _ = doJSON(t, app, "POST", "/api/transceiver/gain", `{"gains": [{"channels": ["rx2"], "gain_index": 200}]}`)
	if status != 400 {
		t.Errorf("gain below table accepted: %d", status)
	}

	if len(regs.Addresses()) == 0 {
		t.Error("no registers written")
	}
}

func TestGainTableCSVUpload(t *testing.T) {
	dev, _ := newTestTransceiver(t)
	app := newTestApp(t, dev)

	csvData := "Gain Index,FE Gain,Ext Control,Phase Offset,Digital Gain\n" +
		"253,5,0,0,-10\n" +
		"255,7,0,0,10\n" +
		"254,6,0,0,0\n"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("channels", "rx0,rx1")
	fw, _ := mw.CreateFormFile("file", "table.csv")
	fw.Write([]byte(csvData))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/transceiver/gaintable/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload: %d %s", resp.StatusCode, raw)
	}

	req = httptest.NewRequest("GET", "/api/transceiver/gaintable/rx1/csv", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("download: %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	offset, rows, err := ParseGainTableCSV(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if offset != 255 || len(rows) != 3 || rows[0].RxFeGain != 7 || rows[2].DigGain != -10 {
		t.Errorf("downloaded table offset %d rows %+v", offset, rows)
	}
}

func TestParseGainTableCSVErrors(t *testing.T) {
	tests := map[string]string{
		"empty":       "Gain Index,FE Gain,Ext Control,Phase Offset,Digital Gain\n",
		"gap":         "10,1,0,0,0\n8,1,0,0,0\n",
		"duplicate":   "10,1,0,0,0\n10,1,0,0,0\n",
		"not number":  "10,x,0,0,0\n",
		"short row":   "10,1,0,0\n",
		"index range": "256,1,0,0,0\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseGainTableCSV(strings.NewReader(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDetectorEndpoints(t *testing.T) {
	dev, _ := newTestTransceiver(t)
	app := newTestApp(t, dev)

	status, resp := doJSON(t, app, "POST", "/api/transceiver/hb2", `{"configs": [{
		"channels": ["rx5"], "enable": true, "duration_count": 4, "threshold_count": 2,
		"high_threshold": 4000, "low_threshold": 1000}]}`)
	if status != 200 {
		t.Fatalf("hb2: %d %+v", status, resp)
	}
	_, resp = doJSON(t, app, "GET", "/api/transceiver/hb2/rx5", nil)
	var hb2 adrv903x.Hb2OverloadCfg
	json.Unmarshal(resp.Data, &hb2)
	if !hb2.Enable || hb2.HighThreshold != 4000 || hb2.DurationCount != 4 {
		t.Errorf("hb2 readback = %+v", hb2)
	}

	status, _ = doJSON(t, app, "POST", "/api/transceiver/orx/atten", `{"channels": ["orx1"], "atten_db": 12}`)
	if status != 200 {
		t.Fatalf("orx atten: %d", status)
	}
	_, resp = doJSON(t, app, "GET", "/api/transceiver/orx/atten/orx1", nil)
	if !strings.Contains(string(resp.Data), `"atten_db":12`) {
		t.Errorf("orx atten readback = %s", resp.Data)
	}

	status, resp = doJSON(t, app, "POST", "/api/transceiver/decpower", `{"configs": [{
		"channels": ["rx3"], "block": "band1", "enable": true, "duration": 5}]}`)
	if status != 200 {
		t.Fatalf("decpower: %d %+v", status, resp)
	}
	_, resp = doJSON(t, app, "GET", "/api/transceiver/decpower/rx3?block=band1", nil)
	var dp adrv903x.DecPowerCfg
	json.Unmarshal(resp.Data, &dp)
	if !dp.Enable || dp.Duration != 5 || dp.Block != adrv903x.DecPowerBand1 {
		t.Errorf("decpower readback = %+v", dp)
	}
	status, _ = doJSON(t, app, "GET", "/api/transceiver/decpower/rx3?block=band7", nil)
	if status != 400 {
		t.Errorf("bad block accepted: %d", status)
	}

	status, resp = doJSON(t, app, "GET", "/api/transceiver/lo/orx0", nil)
	if status != 200 || !strings.Contains(string(resp.Data), `"lo0"`) {
		t.Errorf("lo source: %d %s", status, resp.Data)
	}

	status, resp = doJSON(t, app, "GET", "/api/transceiver/registers/rx0", nil)
	if status != 200 || !strings.Contains(string(resp.Data), `"fields"`) {
		t.Errorf("register dump: %d %+v", status, resp)
	}
}

func TestStatusAndReset(t *testing.T) {
	dev, regs := newTestTransceiver(t)
	app := newTestApp(t, dev)

	doJSON(t, app, "POST", "/api/transceiver/gain/minmax", `{"channels": ["rx0"], "min_index": 190, "max_index": 240}`)
	if s := dev.State(); s.MinGainIndex[0] != 190 {
		t.Fatalf("min gain = %d", s.MinGainIndex[0])
	}

	status, resp := doJSON(t, app, "GET", "/api/transceiver/status", nil)
	if status != 200 || !strings.Contains(string(resp.Data), `"transport":"sim"`) {
		t.Fatalf("status: %d %s", status, resp.Data)
	}

	status, _ = doJSON(t, app, "POST", "/api/transceiver/reset", nil)
	if status != 200 {
		t.Fatalf("reset: %d", status)
	}
	if s := dev.State(); s.MinGainIndex[0] != adrv903x.MinRxGainTableIndex {
		t.Errorf("state not restored: min gain %d", s.MinGainIndex[0])
	}
	if len(regs.Addresses()) != 0 {
		t.Errorf("registers not cleared by reset")
	}
}

func TestMetricsCountOperations(t *testing.T) {
	m := NewMetrics()
	dev, _ := newTestTransceiver(t, WithMetrics(m))
	app := newTestApp(t, dev)

	doJSON(t, app, "POST", "/api/transceiver/gaindisable", `{"channels": ["rx0"]}`)
	doJSON(t, app, "POST", "/api/transceiver/orx/atten", `{"channels": ["orx0"], "atten_db": 40}`)

	mp, err := NewMetricsPlugin(dev.Metrics())
	if err != nil {
		t.Fatal(err)
	}
	mp.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)
	for _, want := range []string{
		`adrv_operations_total{operation="DisableGainComp",result="ok"} 1`,
		`adrv_operations_total{operation="OrxAttenSet",result="invalid_param"} 1`,
		`adrv_channel_data_format_mode{channel="rx0"} 0`,
		`adrv_register_accesses_total{access="write_field",result="ok"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	if _, err := NewMetricsPlugin(nil); err == nil {
		t.Error("metrics plugin without collectors accepted")
	}
}

func TestTraceHub(t *testing.T) {
	hub := NewTraceHub()
	dev, _ := newTestTransceiver(t, WithTrace(hub))

	id, events := hub.Subscribe()
	err := dev.Run("OrxAttenSet", func(d *adrv903x.Device) error {
		return d.OrxAttenSet(adrv903x.ORx0.Mask(), 3)
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Access == "" || ev.Error != "" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("no trace event published")
	}

	hub.Unsubscribe(id)
	if hub.Subscribers() != 0 {
		t.Errorf("subscribers = %d", hub.Subscribers())
	}
	for range events {
	}
}

func TestTransceiverOpenFailure(t *testing.T) {
	open := func() (Link, error) { return nil, errors.New("no such device") }
	dev, err := NewTransceiver(open, adrv903x.NewState())
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, dev)

	status, resp := doJSON(t, app, "GET", "/api/transceiver/dataformat/rx0/mode", nil)
	if status != http.StatusInternalServerError || resp.Success {
		t.Errorf("open failure: %d %+v", status, resp)
	}
}
