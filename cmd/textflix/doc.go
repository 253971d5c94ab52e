// Command textflix is the operator CLI for the Textflix daemon's data: it
// inspects and clears stored conversations, lists movie requests, exercises
// the identification pipeline, and sends test notifications.
package main
