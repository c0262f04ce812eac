package model

import "github.com/oakwood-net/routeros-client/proto"

// SystemResources is the reply shape of /system/resource/print.
type SystemResources struct {
	Uptime          string `ros:"uptime"`
	Version         string `ros:"version"`
	BuildTime       string `ros:"build-time"`
	FactorySoftware string `ros:"factory-software"`

	FreeMemory  uint32 `ros:"free-memory"`
	TotalMemory uint32 `ros:"total-memory"`

	CPU     string `ros:"cpu"`
	CPUCount uint8  `ros:"cpu-count"`
	CPULoad  uint16 `ros:"cpu-load"`

	FreeHddSpace  uint32 `ros:"free-hdd-space"`
	TotalHddSpace uint32 `ros:"total-hdd-space"`

	ArchitectureName string `ros:"architecture-name"`
	BoardName        string `ros:"board-name"`
	Platform         string `ros:"platform"`
}

// DecodeSystemResources decodes a single /system/resource/print reply
// sentence.
func DecodeSystemResources(s *proto.Sentence) (*SystemResources, error) {
	var r SystemResources
	if err := proto.Decode(s, &r, false); err != nil {
		return nil, err
	}
	return &r, nil
}
