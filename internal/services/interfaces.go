package services

type Notifier interface {
	SendSMS(to, message string) error
}
