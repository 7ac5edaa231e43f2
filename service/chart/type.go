package chart

// IService renders per-class counts. Render is a no-op when destination is empty.
type IService interface {
	Render(counts map[string]int, label string, destination string) error
}
