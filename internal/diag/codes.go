package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005
	LexUnterminatedChar         Code = 1006

	// token trees
	SynInfo                Code = 2000
	SynUnexpectedToken     Code = 2001
	SynUnclosedDelimiter   Code = 2002
	SynUnbalancedDelimiter Code = 2003

	// declarations
	SynDeclExpectName      Code = 2101
	SynDeclExpectParams    Code = 2102
	SynDeclBadParam        Code = 2103
	SynDeclEmptyDefault    Code = 2104
	SynDeclDuplicateParam  Code = 2105
	SynDeclRedeclared      Code = 2106
	SynDeclUnexpectedAfter Code = 2107

	// call-site expansion
	ExpInfo              Code = 3000
	ExpUnknownArgument   Code = 3001
	ExpOrderingViolation Code = 3002
	ExpArityExceeded     Code = 3003
	ExpEmptyArgument     Code = 3004
	ExpMissingArgument   Code = 3005
	ExpRecursionLimit    Code = 3006

	IOLoadFileError Code = 4001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexTokenTooLong:             "Token too long",
	LexUnterminatedChar:         "Unterminated char literal",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedDelimiter:        "Unclosed delimiter",
	SynUnbalancedDelimiter:      "Unbalanced closing delimiter",
	SynDeclExpectName:           "Declaration is missing its target name",
	SynDeclExpectParams:         "Declaration is missing its parameter list",
	SynDeclBadParam:             "Malformed parameter entry",
	SynDeclEmptyDefault:         "Empty default expression",
	SynDeclDuplicateParam:       "Duplicate parameter name",
	SynDeclRedeclared:           "Name already declared",
	SynDeclUnexpectedAfter:      "Unexpected token after declaration",
	ExpInfo:                     "Expansion information",
	ExpUnknownArgument:          "Unknown argument name",
	ExpOrderingViolation:        "Positional argument after keyword argument",
	ExpArityExceeded:            "Too many arguments",
	ExpEmptyArgument:            "Empty argument value",
	ExpMissingArgument:          "Missing required argument",
	ExpRecursionLimit:           "Expansion recursion limit reached",
	IOLoadFileError:             "I/O load file error",
	ObsInfo:                     "Observability information",
	ObsTimings:                  "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Kind groups codes into the error taxonomy reported to tools.
func (c Code) Kind() string {
	switch {
	case c >= SynDeclExpectName && c <= SynDeclUnexpectedAfter:
		return "DeclarationSyntaxError"
	case c == ExpUnknownArgument:
		return "UnknownArgumentName"
	case c == ExpOrderingViolation:
		return "OrderingViolation"
	case c == ExpArityExceeded:
		return "ArityExceeded"
	case c == ExpEmptyArgument:
		return "EmptyArgumentValue"
	case c == ExpMissingArgument:
		return "MissingRequiredArgument"
	case c == ExpRecursionLimit:
		return "RecursionLimit"
	case c >= LexInfo && c < SynInfo:
		return "LexicalError"
	case c >= SynInfo && c < SynDeclExpectName:
		return "SyntaxError"
	case c == IOLoadFileError:
		return "IOError"
	}
	return "Other"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
