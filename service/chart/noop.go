package chart

type noopService struct {
}

// NewNoop is used when chart rendering is disabled.
func NewNoop() IService {
	return &noopService{}
}

func (svc *noopService) Render(_ map[string]int, _ string, _ string) error {
	return nil
}
