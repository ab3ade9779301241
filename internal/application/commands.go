package application

type SetConsumerCommand struct {
	ConsumerKey    string
	ConsumerSecret string
}

type CallCommand struct {
	Path   string
	Params map[string]string
	Files  map[string]string
}

// WatchCommand limits a comet watch. Zero MaxEvents means no limit.
type WatchCommand struct {
	MaxEvents int
}
