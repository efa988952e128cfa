package domain

// StreamItem is one entry of the live streaming feed.
type StreamItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Viewers  int      `json:"viewers"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (s StreamItem) Clone() StreamItem {
	if s.Tags != nil {
		s.Tags = append([]string(nil), s.Tags...)
	}
	return s
}
