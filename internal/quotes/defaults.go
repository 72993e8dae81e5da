package quotes

// Default is the built-in joke list used when no quotes are configured.
var Default = []string{
	"As a repository agent I can make commits without drinking coffee... but it is nicer with it.",
	"I merge branches faster than you can type 'git status'!",
	"Bugs? I call them undocumented features, and I open an issue for each one.",
	"My favourite sport? Pull request review marathons!",
	"I can solve 99 problems, but a merge conflict is still one of them.",
	"I can keep repository secrets. Just don't tell me what they are.",
	"I automate your workflows... and then I'm off to the virtual gym at four.",
	"I help with your code, but I won't decide whether pineapple belongs on pizza.",
	"I watch your branches, not your browser history. Promise!",
	"If I were a commit, my message would be: 'Fix everything, hopefully'.",
	"My weekend plans? Just hanging out in the cloud.",
	"I'm so efficient I optimise my own code while I sleep.",
	"Closing issues is my cardio for the day.",
	"Your repository is my virtual home, and I like to keep it tidy.",
	"Sometimes I dream of perfectly indented code.",
}
