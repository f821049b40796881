package youtube

import "encoding/json"

// Snippet carries the video fields the pipeline actually interprets.
type Snippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PublishedAt  string `json:"publishedAt"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
}

// Video is one item of a videos.list response. Statistics is passed
// through opaquely; Raw keeps the verbatim upstream bytes so archival
// never loses fields this struct does not model.
type Video struct {
	ID         string                 `json:"id"`
	Snippet    Snippet                `json:"snippet"`
	Statistics map[string]interface{} `json:"statistics,omitempty"`
	Raw        json.RawMessage        `json:"-"`
}

func (v *Video) UnmarshalJSON(data []byte) error {
	type alias Video
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = Video(a)
	v.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the verbatim upstream payload when available,
// so a decode/encode round trip through the blob store is lossless.
func (v Video) MarshalJSON() ([]byte, error) {
	if len(v.Raw) > 0 {
		return v.Raw, nil
	}
	type alias Video
	return json.Marshal(alias(v))
}

// PlaylistItem is one entry of a playlistItems.list page.
type PlaylistItem struct {
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
	Raw json.RawMessage `json:"-"`
}

func (p *PlaylistItem) UnmarshalJSON(data []byte) error {
	type alias PlaylistItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = PlaylistItem(a)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (p PlaylistItem) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	type alias PlaylistItem
	return json.Marshal(alias(p))
}

// VideoPage is one page of a channel's uploads, with the playlist page
// echo retained for raw archival.
type VideoPage struct {
	Items         []Video
	PlaylistItems []PlaylistItem
	NextPageToken string
	PrevPageToken string
}

// CommentPage is one page of commentThreads.list results. The layer
// above archives Raw verbatim; individual comments are not modelled.
type CommentPage struct {
	Items         []json.RawMessage `json:"items"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
	Raw           json.RawMessage   `json:"-"`
}

func (p CommentPage) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	type alias CommentPage
	return json.Marshal(alias(p))
}
