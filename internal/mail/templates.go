package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// ResetPasswordSubject is the subject line of the reset email.
const ResetPasswordSubject = "Redefinição de Senha"

// ResetPasswordEmail renders the password reset body. An empty name falls
// back to a plain greeting.
func ResetPasswordEmail(resetURL, name string, ttl time.Duration) templ.Component {
	if name == "" {
		name = "Olá"
	}
	href := templ.URL(resetURL)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, resetPasswordHTML,
			templ.EscapeString(name),
			templ.EscapeString(string(href)),
			templ.EscapeString(formatTTL(ttl)),
		)
		return err
	})
}

// ResetPasswordText is the plain-text alternative of the reset email.
func ResetPasswordText(resetURL, name string, ttl time.Duration) string {
	if name == "" {
		name = "Olá"
	}
	return fmt.Sprintf("%s, recebemos uma solicitação para redefinir sua senha.\n\n"+
		"Acesse o link abaixo para continuar:\n%s\n\n"+
		"Este link é válido por %s.\n\n"+
		"Caso você não tenha solicitado essa ação, apenas ignore este e-mail.\n",
		name, resetURL, formatTTL(ttl))
}

// Render writes c to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatTTL(ttl time.Duration) string {
	if ttl >= time.Hour && ttl%time.Hour == 0 {
		h := int(ttl / time.Hour)
		if h == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", h)
	}
	m := int(ttl / time.Minute)
	if m == 1 {
		return "1 minuto"
	}
	return fmt.Sprintf("%d minutos", m)
}

const resetPasswordHTML = `<div style="font-family: Arial, sans-serif; background-color:#f6f6f6; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background: white; border-radius: 8px; padding: 30px; box-shadow: 0 0 10px #0002;">
    <h2 style="color:#333; text-align:center;">Redefinição de Senha</h2>
    <p style="font-size:15px; color:#444;">%s, recebemos uma solicitação para redefinir sua senha.</p>
    <p style="font-size:15px; color:#444;">Clique no botão abaixo para continuar:</p>
    <div style="text-align:center; margin: 30px 0;">
      <a href="%s" style="padding: 12px 25px; background-color:#007bff; color:white; text-decoration:none; border-radius:5px; font-size:16px;">Redefinir Senha</a>
    </div>
    <p style="font-size:14px; color:#666;">Este link é válido por <strong>%s</strong>.</p>
    <hr style="margin-top:30px; border: none; border-top: 1px solid #eee;">
    <p style="font-size:12px; color:#999; text-align:center;">Caso você não tenha solicitado essa ação, apenas ignore este e-mail.</p>
  </div>
</div>
`
