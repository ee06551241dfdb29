package llm

import "context"

// FallbackReply is sent when no model is configured or the model call fails.
const FallbackReply = "ممنون از پیام شما! همکاران ما به زودی پاسخ می‌دهند. برای پیگیری سریع‌تر می‌توانید درخواست پشتیبانی ثبت کنید."

// Fallback answers every conversation with FallbackReply.
type Fallback struct{}

func (Fallback) Generate(context.Context, []Message) (string, error) {
	return FallbackReply, nil
}
