package service

import "errors"

// 业务错误（handler 据此映射 HTTP 状态码）
var (
	// 用户 / 账号
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrEmailNotFound      = errors.New("incorrect email")

	// 配对引擎
	ErrSenderNotFound       = errors.New("sender not found")
	ErrReceiverNotFound     = errors.New("receiver not found")
	ErrSelfRequest          = errors.New("you cannot partner with yourself")
	ErrAlreadyPaired        = errors.New("you already have a partner")
	ErrReceiverPaired       = errors.New("the requested user already has a partner")
	ErrPendingRequestExists = errors.New("there is already a pending partner request between you")
	ErrRequestNotFound      = errors.New("partner request not found")
	ErrNotRequestOwner      = errors.New("this request does not belong to this user")
	ErrAlreadyProcessed     = errors.New("this request has already been processed")
	ErrNoPartner            = errors.New("user does not currently have a partner")

	// 通知 / 内容
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDateNotFound         = errors.New("date not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrCommentForbidden     = errors.New("you are not allowed to comment on this date")
)
