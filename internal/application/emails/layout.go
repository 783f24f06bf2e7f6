package emails

import (
	"fmt"
	"time"
)

// Palette for the wedding mail layout.
const (
	themePrimary   = "#9C6B4E"
	themeTextMain  = "#3F3A36"
	themeTextMuted = "#8A817C"
	themeBgBody    = "#F7F3EE"
	themeWhite     = "#FFFFFF"
)

// EmailLayout wraps content in the shared HTML shell used by every outgoing mail.
func EmailLayout(title, contentHTML string) string {
	year := time.Now().Year()
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <style>
    body { margin: 0; padding: 0; width: 100%% !important; background-color: %s; }
    body, td, p, a { font-family: Georgia, 'Times New Roman', serif; color: %s; }
    .content-body p { margin: 0 0 20px 0; font-size: 16px; line-height: 1.6; }
    .content-body h1 { font-size: 22px; margin: 0 0 20px 0; font-weight: normal; letter-spacing: 0.02em; }
    .wedding-button { display: inline-block; background-color: %s; color: #ffffff !important; padding: 12px 32px; text-decoration: none !important; border-radius: 4px; font-size: 15px; }
    .footer-text { color: %s; font-size: 12px; line-height: 1.5; }
  </style>
</head>
<body style="margin: 0; padding: 0; background-color: %s;">
  <table role="presentation" width="100%%" border="0" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 40px 0;">
        <table role="presentation" width="600" border="0" cellspacing="0" cellpadding="0" style="width: 600px; background-color: %s; border-radius: 8px;">
          <tr>
            <td class="content-body" style="padding: 40px 48px 24px 48px;">%s</td>
          </tr>
          <tr>
            <td align="center" style="padding: 0 48px 32px 48px;">
              <p class="footer-text" style="margin: 0;">&copy; %d Wedding Invitation</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`,
		title, themeBgBody, themeTextMain, themePrimary, themeTextMuted, themeBgBody, themeWhite, contentHTML, year)
}
