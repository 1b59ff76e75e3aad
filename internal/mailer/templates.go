// backend/internal/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
)

var resetPasswordTmpl = template.Must(template.New("reset").Parse(`<h1>Password Reset</h1>
<p>We received a request to reset the password for your account.</p>
<p><a href="{{.Link}}">Reset Password</a></p>
<p>If you did not request this, you can ignore this email.</p>`))

var quizResultTmpl = template.Must(template.New("result").Parse(`<h1>Quiz Result</h1>
<p>You scored {{.Score}} in the quiz {{.QuizTitle}}.</p>`))

// ResetPasswordEmail renders the password reset message for link.
func ResetPasswordEmail(to, link string) (Message, error) {
	var buf bytes.Buffer
	if err := resetPasswordTmpl.Execute(&buf, struct{ Link string }{link}); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Request for reset password", HTML: buf.String()}, nil
}

// QuizResultEmail renders the score notification sent after an attempt.
func QuizResultEmail(to, toName, quizTitle string, score int) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		QuizTitle string
		Score     int
	}{quizTitle, score}
	if err := quizResultTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, ToName: toName, Subject: "Quiz Result", HTML: buf.String()}, nil
}
