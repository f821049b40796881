package kafka

import "time"

const (
	EventTypeFetchJob   = "harvest.fetch"
	EventTypeProcessJob = "harvest.process"
)

// Event is the envelope every pipeline message travels in.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// FetchJob asks the harvest worker to run a full channel ingestion.
type FetchJob struct {
	ChannelID string `json:"channel_id"`
	Force     bool   `json:"force"`
}

func (j FetchJob) Payload() map[string]interface{} {
	return map[string]interface{}{
		"channel_id": j.ChannelID,
		"force":      j.Force,
	}
}

// FetchJobFromEvent extracts a FetchJob from an event envelope.
func FetchJobFromEvent(event Event) (FetchJob, bool) {
	channelID, _ := event.Data["channel_id"].(string)
	if channelID == "" {
		return FetchJob{}, false
	}
	force, _ := event.Data["force"].(bool)
	return FetchJob{ChannelID: channelID, Force: force}, true
}

// ProcessJob asks the (stub) analysis stage to summarize a video.
type ProcessJob struct {
	VideoID string `json:"video_id"`
	Segment string `json:"segment,omitempty"`
}

func (j ProcessJob) Payload() map[string]interface{} {
	return map[string]interface{}{
		"video_id": j.VideoID,
		"segment":  j.Segment,
	}
}
