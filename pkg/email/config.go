package email

// Config holds email delivery configuration. Postmark tokens are
// optional so development environments can run with the dev sender;
// sender and support addresses are always required because they define
// the From and Reply-To identity on every outbound message.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
