package constant

// AsciiArtLogo is the application's banner shown in the root command help.
const AsciiArtLogo = `
 ┏━┓┏━╸┏━╸╻
 ┣┳┛┣╸ ┣╸ ┃
 ╹┗╸┗━╸┗━╸┗━╸`
