package raster

// TIFF header magic.
const (
	leHeader = "II\x2A\x00"
	beHeader = "MM\x00\x2A"

	ifdEntryLen = 12
)

// Field data types.
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtUndefined = 7
	dtSRational = 10
	dtDouble    = 12
)

// typeLen is the byte size of one element of each field type, indexed by
// type code including the signed and float types read but never written.
var typeLen = [...]int{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Tags.
const (
	tImageWidth                = 256
	tImageLength               = 257
	tBitsPerSample             = 258
	tCompression               = 259
	tPhotometricInterpretation = 262
	tStripOffsets              = 273
	tSamplesPerPixel           = 277
	tRowsPerStrip              = 278
	tStripByteCounts           = 279
	tPlanarConfiguration       = 284
	tPredictor                 = 317
	tTileWidth                 = 322
	tTileLength                = 323
	tTileOffsets               = 324
	tTileByteCounts            = 325
	tExtraSamples              = 338
	tSampleFormat              = 339

	// GeoTIFF
	tModelPixelScale     = 33550
	tModelTiepoint       = 33922
	tModelTransformation = 34264
	tGeoKeyDirectory     = 34735
	tGeoDoubleParams     = 34736
	tGeoASCIIParams      = 34737

	// GDAL
	tGDALNodata = 42113
)

// geoTags are copied verbatim from source to destination.
var geoTags = []uint16{
	tModelPixelScale,
	tModelTiepoint,
	tModelTransformation,
	tGeoKeyDirectory,
	tGeoDoubleParams,
	tGeoASCIIParams,
}

// Compression schemes.
const (
	cNone     = 1
	cLZW      = 5
	cDeflate  = 8
	cPackBits = 32773
	// Adobe deflate code used by older writers
	cDeflateOld = 32946
)

// Photometric interpretations.
const (
	pBlackIsZero = 1
	pRGB         = 2
)

const (
	prNone       = 1
	prHorizontal = 2
)

const (
	planarChunky = 1
	planarPlanar = 2
)

// Sample formats.
const (
	sfUint = 1
	sfInt  = 2
)

// esUnassocAlpha marks an extra sample as unassociated alpha.
const esUnassocAlpha = 2
