package config

// NewMap reads options from vals instead of the process environment. Used by tests
// and by callers that assemble configuration themselves.
func NewMap(vals map[string]string) IService {
	return &envService{
		lookup: func(key string) (string, bool) {
			v, ok := vals[key]
			return v, ok
		},
	}
}
