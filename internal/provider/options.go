package provider

// Option configures a vendor provider.
type Option func(*options)

type options struct {
	baseURL      string
	defaultModel string
}

// WithBaseURL points the provider at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithDefaultModel overrides the model used when params carry none.
func WithDefaultModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.defaultModel = model
		}
	}
}

func newOptions(defaultModel string, opts []Option) options {
	o := options{defaultModel: defaultModel}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
