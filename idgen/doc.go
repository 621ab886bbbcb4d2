// Package idgen provides the unique document-ID generator the scheduler
// uses for the Timeout documents it creates on eviction. See §2.1.
package idgen
