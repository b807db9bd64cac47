package constants

const USER_AGENT = "eventlight/1.0 (+https://github.com/Amund211/eventlight)"
