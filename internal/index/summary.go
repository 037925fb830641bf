package index

import (
	"github.com/starford/srtbspeeds/internal/difficulty"
	"github.com/starford/srtbspeeds/internal/models"
	"github.com/starford/srtbspeeds/internal/srtb"
)

// Summarize lists the speed-trigger entries of a chart in document order.
// Entries whose payload does not decode are reported with a count of -1.
func Summarize(data []byte) ([]models.ChartSpeeds, error) {
	doc, err := srtb.Parse(data)
	if err != nil {
		return nil, err
	}
	var out []models.ChartSpeeds
	seen := make(map[string]struct{})
	for _, key := range doc.Keys() {
		if !difficulty.IsSpeedKey(key) {
			continue
		}
		// Only the first entry for a key is ever read.
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		s := models.ChartSpeeds{Key: key, TriggerCount: -1}
		if d, ok := difficulty.FromKey(key); ok {
			s.Difficulty = d.String()
		}
		payload, _ := doc.Extract(key)
		if triggers, err := srtb.DecodePayload(payload); err == nil {
			s.TriggerCount = len(triggers)
			if len(triggers) > 0 {
				s.FirstTime = triggers[0].Time
				s.LastTime = triggers[len(triggers)-1].Time
			}
		}
		out = append(out, s)
	}
	return out, nil
}
