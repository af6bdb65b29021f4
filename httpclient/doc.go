// Package httpclient is the HTTP client used to reach local model services.
//
// Errors are classified by transport failure and status code so callers can
// decide whether another attempt may succeed.
//
//	client, err := httpclient.New(httpclient.Config{BaseURL: "http://127.0.0.1:8387"})
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/transcribe",
//	    Body:   &httpclient.MultipartBody{Fields: map[string]string{"model": "medium"}},
//	})
package httpclient
