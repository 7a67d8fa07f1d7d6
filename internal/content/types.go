package content

// EndOfPhase is the reserved next_scene_id that closes the current phase:
// in the basic file it hands over to branch selection, in a branch file it
// ends the quiz.
const EndOfPhase = 0

// BranchKey identifies one personalized scene subgraph.
type BranchKey string

// Basic is the namespace of the shared basic-phase sequence.
const Basic BranchKey = "basic"

// Scene is one node of the content graph.
type Scene struct {
	ID          int
	Title       string
	Description string
	Options     []Option
	Progress    *Progress
}

// Option returns the option with the given id.
func (s Scene) Option(id string) (Option, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Terminal reports whether the scene is an epilogue with nothing to choose.
func (s Scene) Terminal() bool {
	return len(s.Options) == 0
}

// Option is one edge from a scene together with its scoring contribution.
type Option struct {
	ID          string
	Text        string
	Profiles    []ProfileWeight
	NextSceneID int
	Feedback    string
}

// ProfileWeight awards Weight points to the named profile.
type ProfileWeight struct {
	Name   string
	Weight int
}

// Progress is the UI position marker of a scene inside its sequence.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
