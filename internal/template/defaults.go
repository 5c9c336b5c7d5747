package template

import "legalease-notifications/internal/models"

// Default holds a built-in template materialized on demand when no active
// template exists for a type.
type Default struct {
	Name      string
	Subject   string
	HTMLBody  string
	TextBody  string
	Variables map[string]string
}

// DefaultFor returns the built-in template for a type. Unknown types fall
// back to the welcome template.
func DefaultFor(t models.TemplateType) Default {
	if d, ok := defaults[t]; ok {
		return d
	}
	return defaults[models.TemplateWelcome]
}

var defaults = map[models.TemplateType]Default{
	models.TemplateWelcome: {
		Name:    "Welcome Email",
		Subject: "Welcome to {{platform_name}}, {{username}}!",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Welcome to {{platform_name}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Welcome to {{platform_name}}!</h1>
    <div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px;">
      <h2>Hello {{username}},</h2>
      <p>Welcome to {{platform_name}}, your comprehensive online court hearing platform!</p>
      <p>As a {{user_type}}, you now have access to a powerful suite of legal tools and services designed to streamline your court proceedings.</p>
    </div>
    <h3>What you can do:</h3>
    <ul>
      <li>Participate in virtual court hearings</li>
      <li>Access case documents and files</li>
      <li>Schedule appointments and consultations</li>
      <li>Receive real-time notifications about your cases</li>
    </ul>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{login_url}}" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Access Your Account</a>
    </div>
    <p>Need help? Contact our support team at <a href="mailto:{{support_email}}">{{support_email}}</a>.</p>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `Welcome to {{platform_name}}, {{username}}!

Hello {{username}},

Welcome to {{platform_name}}, your comprehensive online court hearing platform!

As a {{user_type}}, you now have access to a powerful suite of legal tools and services designed to streamline your court proceedings.

What you can do:
- Participate in virtual court hearings
- Access case documents and files
- Schedule appointments and consultations
- Receive real-time notifications about your cases

Access your account: {{login_url}}

Need help? Contact our support team at {{support_email}}.

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":      "User's display name",
			"user_type":     "Type of user (Petitioner, Judge, etc.)",
			"platform_name": "Platform name",
			"login_url":     "URL to login page",
			"support_email": "Support email address",
			"current_year":  "Current year",
		},
	},

	models.TemplateVerification: {
		Name:    "Email Verification",
		Subject: "Verify Your {{platform_name}} Account",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Verify Your Email</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Verify Your Email Address</h1>
    <div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px;">
      <h2>Hello {{username}},</h2>
      <p>Thank you for registering with {{platform_name}}. To complete your account setup, please verify your email address by clicking the button below.</p>
    </div>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{verification_url}}" style="background-color: #28a745; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Verify Email Address</a>
    </div>
    <p><strong>Important:</strong> This verification link will expire in {{expiry_hours}} hours for security reasons.</p>
    <p>If the button doesn't work, copy and paste this link into your browser:</p>
    <p style="word-break: break-all; background-color: #f8f9fa; padding: 10px;">{{verification_url}}</p>
    <p>If you didn't create this account, please contact our support team at <a href="mailto:{{support_email}}">{{support_email}}</a>.</p>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `Verify Your {{platform_name}} Account

Hello {{username}},

Thank you for registering with {{platform_name}}. To complete your account setup, please verify your email address by visiting the following link:

{{verification_url}}

Important: This verification link will expire in {{expiry_hours}} hours for security reasons.

If you didn't create this account or have any questions, please contact our support team at {{support_email}}.

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":           "User's display name",
			"verification_url":   "Email verification URL",
			"verification_token": "Verification token",
			"platform_name":      "Platform name",
			"support_email":      "Support email address",
			"expiry_hours":       "Hours until link expires",
			"current_year":       "Current year",
		},
	},

	models.TemplatePasswordReset: {
		Name:    "Password Reset",
		Subject: "Reset Your {{platform_name}} Password",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Password Reset</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Password Reset Requested</h1>
    <p>Hello {{username}},</p>
    <p>We received a request to reset the password for your {{platform_name}} account.</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{reset_url}}" style="background-color: #dc3545; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Reset Password</a>
    </div>
    <p>If you didn't request this, you can safely ignore this email; your password will not change.</p>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `Reset Your {{platform_name}} Password

Hello {{username}},

We received a request to reset the password for your {{platform_name}} account. Visit the following link to choose a new password:

{{reset_url}}

If you didn't request this, you can safely ignore this email; your password will not change.

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":      "User's display name",
			"reset_url":     "Password reset URL",
			"platform_name": "Platform name",
			"current_year":  "Current year",
		},
	},

	models.TemplateHearingReminder: {
		Name:    "Hearing Reminder",
		Subject: "Hearing Scheduled - Case {{case_number}}",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Hearing Scheduled</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Hearing Scheduled</h1>
    <p>Hello {{username}},</p>
    <p>A hearing has been scheduled for case <strong>{{case_number}}</strong> on <strong>{{hearing_date}}</strong>.</p>
    <p>Please log in to {{platform_name}} ahead of time to review the case documents and join the virtual courtroom.</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{login_url}}" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">View Hearing Details</a>
    </div>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `Hearing Scheduled - Case {{case_number}}

Hello {{username}},

A hearing has been scheduled for case {{case_number}} on {{hearing_date}}.

Please log in to {{platform_name}} ahead of time to review the case documents and join the virtual courtroom: {{login_url}}

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":      "User's display name",
			"case_number":   "Court case number",
			"hearing_date":  "Scheduled hearing date",
			"platform_name": "Platform name",
			"login_url":     "URL to login page",
			"current_year":  "Current year",
		},
	},

	models.TemplateCaseUpdate: {
		Name:    "Case Update",
		Subject: "Update on Case {{case_number}}",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Case Update</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Case Update</h1>
    <p>Hello {{username}},</p>
    <p>Case <strong>{{case_number}}</strong> has been updated: {{update_summary}}</p>
    <p>Log in to {{platform_name}} to view the full details.</p>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `Update on Case {{case_number}}

Hello {{username}},

Case {{case_number}} has been updated: {{update_summary}}

Log in to {{platform_name}} to view the full details: {{login_url}}

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":       "User's display name",
			"case_number":    "Court case number",
			"update_summary": "Short description of the change",
			"platform_name":  "Platform name",
			"login_url":      "URL to login page",
			"current_year":   "Current year",
		},
	},

	models.TemplateDocumentShared: {
		Name:    "Document Shared",
		Subject: "A document was shared with you on {{platform_name}}",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Document Shared</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Document Shared</h1>
    <p>Hello {{username}},</p>
    <p><strong>{{document_name}}</strong> has been shared with you{{shared_by_clause}}.</p>
    <p>Log in to {{platform_name}} to view it.</p>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `A document was shared with you on {{platform_name}}

Hello {{username}},

{{document_name}} has been shared with you{{shared_by_clause}}.

Log in to {{platform_name}} to view it: {{login_url}}

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":         "User's display name",
			"document_name":    "Shared document name",
			"shared_by_clause": "Optional ' by <name>' attribution",
			"platform_name":    "Platform name",
			"login_url":        "URL to login page",
			"current_year":     "Current year",
		},
	},

	models.TemplatePaymentConfirmation: {
		Name:    "Payment Confirmation",
		Subject: "Payment Received - {{platform_name}}",
		HTMLBody: `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Payment Confirmation</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50; text-align: center;">Payment Received</h1>
    <p>Hello {{username}},</p>
    <p>We have received your payment of <strong>{{amount}}</strong>{{reference_clause}}.</p>
    <p>Thank you for using {{platform_name}}.</p>
    <p style="text-align: center; color: #6c757d; font-size: 12px;">&copy; {{current_year}} {{platform_name}}. All rights reserved.</p>
  </div>
</body>
</html>`,
		TextBody: `Payment Received - {{platform_name}}

Hello {{username}},

We have received your payment of {{amount}}{{reference_clause}}.

Thank you for using {{platform_name}}.

(c) {{current_year}} {{platform_name}}. All rights reserved.`,
		Variables: map[string]string{
			"username":         "User's display name",
			"amount":           "Payment amount",
			"reference_clause": "Optional ' (ref <id>)' clause",
			"platform_name":    "Platform name",
			"current_year":     "Current year",
		},
	},
}
