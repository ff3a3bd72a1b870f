// Package main Invitation Service API
//
//	@title						Invitation Service API
//	@version					1.0
//	@description				Project and organization invitations: creation, notification and acceptance.
//
//	@contact.name				UniEdit Support
//	@contact.url				https://uniedit.io/support
//	@contact.email				support@uniedit.io
//
//	@license.name				Proprietary
//	@license.url				https://uniedit.io/license
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Invitations
//	@tag.description			Invitation workflow
package main
