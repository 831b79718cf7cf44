package tokenizer

// symbolRunes lists the standalone symbols the normalizer isolates as whole
// words and the sequence tokenizer registers with marker variants. The set
// covers the emoji most frequent in social-media corpora; joiners and
// variation selectors are stripped before lookup, so multi-codepoint
// sequences resolve to their base symbols.
var symbolRunes = []rune("" +
	"😀😃😄😁😆😅🤣😂🙂🙃😉😊😇🥰😍🤩😘😗😚😙😋😛😜🤪😝🤑🤗🤭🤫🤔🤐🤨😐😑😶😏😒🙄😬🤥" +
	"😌😔😪🤤😴😷🤒🤕🤢🤮🤧🥵🥶🥴😵🤯🤠🥳😎🤓🧐😕😟🙁☹😮😯😲😳🥺😦😧😨😰😥😢😭😱😖😣😞" +
	"😓😩😫🥱😤😡😠🤬😈👿💀☠💩🤡👹👺👻👽👾🤖😺😸😹😻😼😽🙀😿😾🙈🙉🙊" +
	"👋🤚🖐✋🖖👌🤏✌🤞🤟🤘🤙👈👉👆🖕👇☝👍👎✊👊🤛🤜👏🙌👐🤲🤝🙏💪" +
	"🧑👶👦👧👨👩🧓👴👵" +
	"❤🧡💛💚💙💜🖤🤍🤎💔❣💕💞💓💗💖💘💝💟" +
	"🔥✨⭐🌟💫⚡☀🌙🌈☁☔❄🎉🎊🎁🎈🏆🥇⚽🏀🎵🎶" +
	"💯✔✅❌❎➕➖⚠❗❕❓❔💤💢💥💦💨👀👁💋💍💎🌹🌻🌸💐🍀🎂🍕🌮☕🍺🥂")

// defaultSymbols maps each known symbol to its canonical token label.
var defaultSymbols = func() map[rune]string {
	m := make(map[rune]string, len(symbolRunes))
	for _, r := range symbolRunes {
		m[r] = string(r)
	}
	return m
}()

// isSymbol reports whether r is a known standalone symbol.
func isSymbol(r rune) bool {
	_, ok := defaultSymbols[r]
	return ok
}
