package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/lambda"
)

// marshalFailureBody is returned when a response body cannot be encoded
var marshalFailureBody = []byte(`{"Message":"Internal Server Error"}`)

// responseHeaders returns the headers carried by every response
func responseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// BuildResponse wraps a status code and optional body into the response
// envelope. A nil body produces an empty response body. It never fails: a
// body that cannot be encoded yields a 500 envelope.
func BuildResponse(statusCode int, body interface{}) *lambda.Response {
	resp := &lambda.Response{
		StatusCode: statusCode,
		Headers:    responseHeaders(),
	}

	if body == nil {
		return resp
	}

	data, err := json.Marshal(body)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		resp.Body = marshalFailureBody
		return resp
	}

	resp.Body = data
	return resp
}

// messageResponse builds an envelope whose body is {"Message": message}
func messageResponse(statusCode int, message string) *lambda.Response {
	return BuildResponse(statusCode, models.MessageBody{Message: message})
}
