package dto

import (
	"time"

	authdomain "portfolio-backend/internal/auth/domain"
)

type SessionRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        *authdomain.User `json:"user"`
}

type RegisterFCMRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
	Platform   string `json:"platform"`
}

type MeResponse struct {
	User     *authdomain.User `json:"user"`
	IsMaster bool             `json:"is_master"`
}
