package plugins

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/linht/adrv-manager/adrv903x"
)

// gainTableHeader is the column layout of gain table CSV files
var gainTableHeader = []string{"Gain Index", "FE Gain", "Ext Control", "Phase Offset", "Digital Gain"}

// maxGainTableUpload bounds the CSV upload size; a full table is well under it
const maxGainTableUpload = 64 * 1024

// ParseGainTableCSV reads a gain table CSV. Rows may appear in any order but
// must cover a contiguous index range. The rows are returned highest index
// first together with that index.
func ParseGainTableCSV(r io.Reader) (uint8, []adrv903x.GainTableRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = len(gainTableHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse gain table: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(records[0][0], gainTableHeader[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return 0, nil, errors.New("gain table has no rows")
	}

	type indexedRow struct {
		index int
		row   adrv903x.GainTableRow
	}
	parsed := make([]indexedRow, 0, len(records))
	for i, rec := range records {
		vals := make([]int64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseInt(strings.TrimSpace(field), 0, 32)
			if err != nil {
				return 0, nil, fmt.Errorf("row %d %s: %w", i+1, gainTableHeader[j], err)
			}
			vals[j] = v
		}
		if vals[0] < adrv903x.MinRxGainTableIndex || vals[0] > adrv903x.StartRxGainIndex {
			return 0, nil, fmt.Errorf("row %d: gain index %d out of range", i+1, vals[0])
		}
		if vals[1] < 0 || vals[1] > 0xFF || vals[2] < 0 || vals[2] > 0xFF || vals[3] < 0 || vals[3] > 0xFFFF {
			return 0, nil, fmt.Errorf("row %d: value out of range", i+1)
		}
		if vals[4] < -0x8000 || vals[4] > 0x7FFF {
			return 0, nil, fmt.Errorf("row %d: digital gain %d out of range", i+1, vals[4])
		}
		parsed = append(parsed, indexedRow{
			index: int(vals[0]),
			row: adrv903x.GainTableRow{
				RxFeGain:    uint8(vals[1]),
				ExtControl:  uint8(vals[2]),
				PhaseOffset: uint16(vals[3]),
				DigGain:     int16(vals[4]),
			},
		})
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].index > parsed[j].index })
	rows := make([]adrv903x.GainTableRow, len(parsed))
	for i, p := range parsed {
		if p.index != parsed[0].index-i {
			return 0, nil, fmt.Errorf("gain index %d missing or duplicated", parsed[0].index-i)
		}
		rows[i] = p.row
	}
	return uint8(parsed[0].index), rows, nil
}

// WriteGainTableCSV writes rows, highest index first, starting at offset
func WriteGainTableCSV(w io.Writer, offset uint8, rows []adrv903x.GainTableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gainTableHeader); err != nil {
		return err
	}
	for i, row := range rows {
		rec := []string{
			strconv.Itoa(int(offset) - i),
			strconv.Itoa(int(row.RxFeGain)),
			strconv.Itoa(int(row.ExtControl)),
			strconv.Itoa(int(row.PhaseOffset)),
			strconv.Itoa(int(row.DigGain)),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// handleGainTableUpload handles POST /api/transceiver/gaintable/upload with
// a multipart "file" and a comma separated "channels" form value
func (p *TransceiverPlugin) handleGainTableUpload(c *fiber.Ctx) error {
	mask, err := parseChannelList(c.FormValue("channels"))
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return SendErrorMessage(c, 400, "No file provided")
	}
	if file.Size > maxGainTableUpload {
		return SendErrorMessage(c, 413, fmt.Sprintf("File too large (max %d bytes)", maxGainTableUpload))
	}

	f, err := file.Open()
	if err != nil {
		return SendError(c, 500, err)
	}
	defer f.Close()

	offset, rows, err := ParseGainTableCSV(f)
	if err != nil {
		return SendErrorMessage(c, 400, err.Error())
	}

	err = p.dev.Run("RxGainTableWrite", func(d *adrv903x.Device) error {
		return d.RxGainTableWrite(mask, offset, rows)
	})
	if err != nil {
		return SendDeviceError(c, err)
	}

	slog.Info("Gain table uploaded", "file", file.Filename, "channels", mask, "offset", offset, "rows", len(rows))
	return SendSuccess(c, fiber.Map{
		"gain_index_offset": offset,
		"rows":              len(rows),
	}, "Gain table written successfully")
}

// handleGainTableDownload handles GET /api/transceiver/gaintable/:channel/csv
func (p *TransceiverPlugin) handleGainTableDownload(c *fiber.Ctx) error {
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

	var buf bytes.Buffer
	if err := WriteGainTableCSV(&buf, offset, rows); err != nil {
		return SendError(c, 500, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "gaintable_"+ch.String()+".csv"))
	return c.Send(buf.Bytes())
}

// readGainTable reads the table of ch bounded by the ?offset= and ?max=
// queries, defaulting to the whole loaded table
func readGainTable(c *fiber.Ctx, d *adrv903x.Device, ch adrv903x.Channel) (uint8, []adrv903x.GainTableRow, error) {
	offset := uint8(adrv903x.StartRxGainIndex)
	if ch.IsRx() {
		offset = d.State().MaxGainIndex[bits.TrailingZeros32(uint32(ch))]
	}
	if q := c.QueryInt("offset", -1); q >= 0 {
		if q > adrv903x.StartRxGainIndex {
			return 0, nil, fmt.Errorf("%w: offset %d out of range", adrv903x.ErrInvalidParam, q)
		}
		offset = uint8(q)
	}
	maxRows := c.QueryInt("max", adrv903x.StartRxGainIndex+1)

	rows, err := d.RxGainTableRead(ch, offset, maxRows)
	return offset, rows, err
}
