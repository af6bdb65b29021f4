package transcription

import "github.com/kbukum/offlinestt/provider"

// Provider is a transcription backend.
type Provider = provider.RequestResponse[Request, *Response]
