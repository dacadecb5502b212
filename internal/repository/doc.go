// Package repository implements the pipeline's collaborator interfaces on
// MySQL: the order store, the catalog service, the player directory and
// the roster store, plus the staff account and refresh token stores that
// back the admin API's authentication.  The not-found sentinels for
// pipeline referents are defined next to the interfaces in the resolution
// package and returned from these repositories.
package repository
