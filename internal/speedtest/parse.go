package speedtest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/speedwagon-io/speedbot/internal/model"
)

// ParseError reports output that is not valid JSON or lacks a required key.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("missing key %q", e.Key)
	}
	return fmt.Sprintf("invalid json: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type report struct {
	Server *struct {
		Name    *string `json:"name"`
		Country *string `json:"country"`
	} `json:"server"`
	Ping *struct {
		Latency *float64 `json:"latency"`
	} `json:"ping"`
	Download *struct {
		Bandwidth *float64 `json:"bandwidth"`
	} `json:"download"`
	Upload *struct {
		Bandwidth *float64 `json:"bandwidth"`
	} `json:"upload"`
	PacketLoss *float64 `json:"packetLoss"`
	Result     *struct {
		URL *string `json:"url"`
	} `json:"result"`
}

// Parse extracts a Measurement from the tool's JSON output. Bandwidth is
// reported by the tool in bytes per second.
func Parse(data []byte) (model.Measurement, error) {
	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Measurement{}, &ParseError{Err: err}
	}

	switch {
	case r.Server == nil:
		return model.Measurement{}, &ParseError{Key: "server"}
	case r.Server.Name == nil:
		return model.Measurement{}, &ParseError{Key: "server.name"}
	case r.Server.Country == nil:
		return model.Measurement{}, &ParseError{Key: "server.country"}
	case r.Ping == nil:
		return model.Measurement{}, &ParseError{Key: "ping"}
	case r.Ping.Latency == nil:
		return model.Measurement{}, &ParseError{Key: "ping.latency"}
	case r.Download == nil:
		return model.Measurement{}, &ParseError{Key: "download"}
	case r.Download.Bandwidth == nil:
		return model.Measurement{}, &ParseError{Key: "download.bandwidth"}
	case r.Upload == nil:
		return model.Measurement{}, &ParseError{Key: "upload"}
	case r.Upload.Bandwidth == nil:
		return model.Measurement{}, &ParseError{Key: "upload.bandwidth"}
	case r.Result == nil:
		return model.Measurement{}, &ParseError{Key: "result"}
	case r.Result.URL == nil:
		return model.Measurement{}, &ParseError{Key: "result.url"}
	}

	var packetLoss float64
	if r.PacketLoss != nil {
		packetLoss = *r.PacketLoss
	}

	return model.Measurement{
		ServerName:    *r.Server.Name,
		ServerCountry: *r.Server.Country,
		LatencyMs:     Round2(*r.Ping.Latency),
		DownloadMbps:  Mbps(*r.Download.Bandwidth),
		UploadMbps:    Mbps(*r.Upload.Bandwidth),
		PacketLoss:    packetLoss,
		ResultURL:     *r.Result.URL,
	}, nil
}

func Mbps(bytesPerSec float64) float64 {
	return Round2(bytesPerSec * 8 / 1_000_000)
}

// Round2 rounds half-to-even on the exact binary value, so 12.345 becomes
// 12.35 and 0.125 becomes 0.12.
func Round2(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
