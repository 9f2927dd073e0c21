package dto

import "encoding/json"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type FCMTokenRequest struct {
	// Token may be empty; the session then resolves a cached or registered token
	Token string `json:"token"`
}

type DispatchRequest struct {
	// Action defaults to the generic sendData action
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type StatusResponse struct {
	Authenticated bool `json:"authenticated"`
}
