// Package api defines the wire types shared by the catalog HTTP surface.
//
// It covers products, admin credential requests and replies, mail
// enquiries, and the structured error envelope returned on failure. The
// package performs no I/O.
//
// Core types:
//   - [Product]: a catalog entry, owned by the product store
//   - [CredentialsRequest], [UpdateCredentialsRequest]: admin identity bodies
//   - [AuthReply], [LoginReply]: admin endpoint replies
//   - [APIError]: structured error with type, code, param, and message
package api
