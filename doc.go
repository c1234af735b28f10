// Package main provides the entry point for the ToonStack-Admin management
// backend. It starts a web service using the Fiber framework that exposes the
// administrative JSON API of a webtoon publishing platform: role and
// permission management, user administration and the authorization gates
// protecting those routes. The application uses gorm for data persistence and
// seeds its role-based access-control catalog on startup.
package main
