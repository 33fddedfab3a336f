package progress

// Stage identifies a step of a backend dispatch.
type Stage string

const (
	StageMetadata    Stage = "metadata"
	StageRequesting  Stage = "requesting"
	StageDownloading Stage = "downloading"
	StageSaving      Stage = "saving"
	StageCompleted   Stage = "completed"
	StageError       Stage = "error"
)

// Update conveys progress or stage changes for a dispatch.
// Total is <= 0 when the backend sent no Content-Length.
type Update struct {
	RequestID string
	Stage     Stage
	Bytes     int64
	Total     int64
	Message   string
}

// Percent returns 0..100, or -1 when the total size is unknown.
func (u Update) Percent() float64 {
	if u.Total <= 0 {
		return -1
	}
	p := float64(u.Bytes) / float64(u.Total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// Result is emitted once per dispatch when it completes or fails.
type Result struct {
	RequestID string
	Path      string
	Bytes     int64
	Err       error // nil on success
}

// Reporter is implemented by the UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Result(Result) {}
