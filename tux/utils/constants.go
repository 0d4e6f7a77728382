package utils

import "time"

const (
	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00
	EmbedColor   = 0x2B2D31

	// Pagination
	CasesPerPage       = 10
	LeaderboardPerPage = 10

	// Timeouts
	DefaultQueryTimeout = 5 * time.Second
)
