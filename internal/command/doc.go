// Package command implements the bot's chat commands and routes incoming
// messages to them.
//
// Two commands exist:
//
//	!discal role <role|everyone>        set the role allowed to manage the bot
//	!discal channel <channel|all>       restrict the bot to one channel
//	!calendar create <name>             start a calendar draft
//	!calendar name|description <text>   edit the draft
//	!calendar timezone <zone>           set the draft's IANA time zone
//	!calendar review                    show the draft
//	!calendar confirm                   create the calendar
//	!calendar cancel                    discard the draft
//
// Every subcommand that changes state asks the authorization gate first.
// Replies are plain text.
package command
