package model

// Unavailable is reported for host details that could not be looked up.
const Unavailable = "Unavailable"

// Measurement is a parsed speedtest result. Throughput is in megabits per
// second and latency in milliseconds, both rounded to two decimals.
type Measurement struct {
	ServerName    string  `json:"server_name"`
	ServerCountry string  `json:"server_country"`
	LatencyMs     float64 `json:"latency_ms"`
	DownloadMbps  float64 `json:"download_mbps"`
	UploadMbps    float64 `json:"upload_mbps"`
	PacketLoss    float64 `json:"packet_loss"`
	ResultURL     string  `json:"result_url"`
}

type HostContext struct {
	Hostname string `json:"hostname"`
	IPv4     string `json:"ipv4"`
	Uptime   string `json:"uptime"`
}

type Credential struct {
	Token  string
	ChatID string
}

func (c Credential) Valid() bool {
	return c.Token != "" && c.ChatID != ""
}
