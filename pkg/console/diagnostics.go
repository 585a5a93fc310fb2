package console

import "fmt"

// Diagnostics printed by the record operations. The wording is stable and
// scripts match on it.
const (
	MsgClassMissing = "** class name missing **"
	MsgClassUnknown = "** class doesn't exist **"
	MsgIDMissing    = "** instance id missing **"
	MsgNotFound     = "** no instance found **"
	MsgAttrMissing  = "** attribute name missing **"
	MsgValueMissing = "** value missing **"
)

func msgInvalidLiteral(text string) string {
	return fmt.Sprintf("** invalid literal: %s **", text)
}

func msgStorage(err error) string {
	return fmt.Sprintf("** storage error: %v **", err)
}

func msgUnknownSyntax(line string) string {
	return "*** Unknown syntax: " + line
}

func msgNoHelp(topic string) string {
	return "*** No help on " + topic
}
