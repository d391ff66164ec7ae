// Package studio is the web module of the PixelMuse app: the authenticated
// JSON API for generating images, reading the credit balance and history, and
// starting a checkout, plus the unauthenticated billing webhook mount.
//
// User identity arrives as a verified email header set by the identity
// provider's edge middleware; the module never handles credentials.
package studio
