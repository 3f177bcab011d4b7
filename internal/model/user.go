package model

// UserRole 由平台身份服务通过 JWT claims 下发
type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)
