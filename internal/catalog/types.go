package catalog

// wireFormat mirrors one entry of video_formats / audio_formats in the
// backend's /api/info response.
type wireFormat struct {
	Quality  string   `json:"quality"`
	Ext      string   `json:"ext"`
	Filesize *float64 `json:"filesize"`
}

// wireItem mirrors a single media item. The playlist fields are only
// populated when Type is "playlist".
type wireItem struct {
	Type         string       `json:"type"`
	Title        string       `json:"title"`
	Thumbnail    string       `json:"thumbnail"`
	Duration     *float64     `json:"duration"`
	Author       *string      `json:"author"`
	ViewCount    *float64     `json:"view_count"`
	VideoFormats []wireFormat `json:"video_formats"`
	AudioFormats []wireFormat `json:"audio_formats"`

	VideoCount *float64   `json:"video_count"`
	Videos     []wireItem `json:"videos"`
}

const (
	wireTypeVideo    = "video"
	wireTypePlaylist = "playlist"
)
