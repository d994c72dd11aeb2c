package consts

const (
	KB = 1024
	MB = 1024 * KB

	DefaultFilePermission = 0o660
	DefaultDirPermission  = 0o770
)

// Artifact names as they appear inside the game's asset bundles. The mixed
// capitalization of the part-table pair follows the shipped files.
const (
	ArtifactIndx = "CARD_Indx"
	ArtifactName = "CARD_Name"
	ArtifactDesc = "CARD_Desc"
	ArtifactPidx = "Card_Pidx"
	ArtifactPart = "Card_Part"
	ArtifactProp = "CARD_Prop"

	ArtifactWordIndx = "WORD_Indx"
	ArtifactWordText = "WORD_Text"
)

const (
	EncryptedSuffix = ".bytes"
	DecodedSuffix   = ".bytes.dec"
	JSONSuffix      = ".bytes.dec.json"
	BracedJSONName  = "CARD_Desc.bytes.dec.braced.json"

	// KeyFileName is shared with other tools of the modding ecosystem,
	// keep the exact spelling.
	KeyFileName = "!CryptoKey.txt"

	SnapshotName = "cardtext.snapshot"
)
