package tonal

// noteData lists equal-tempered notes c0 through b8 in scientific pitch
// notation, tuned to a4 = 440 Hz, in ascending frequency order.
var noteData = []Note{
	{Name: "c0", Frequency: 16.352},
	{Name: "c#0", Frequency: 17.324},
	{Name: "d0", Frequency: 18.354},
	{Name: "d#0", Frequency: 19.445},
	{Name: "e0", Frequency: 20.602},
	{Name: "f0", Frequency: 21.827},
	{Name: "f#0", Frequency: 23.125},
	{Name: "g0", Frequency: 24.5},
	{Name: "g#0", Frequency: 25.957},
	{Name: "a0", Frequency: 27.5},
	{Name: "a#0", Frequency: 29.135},
	{Name: "b0", Frequency: 30.868},
	{Name: "c1", Frequency: 32.703},
	{Name: "c#1", Frequency: 34.648},
	{Name: "d1", Frequency: 36.708},
	{Name: "d#1", Frequency: 38.891},
	{Name: "e1", Frequency: 41.203},
	{Name: "f1", Frequency: 43.654},
	{Name: "f#1", Frequency: 46.249},
	{Name: "g1", Frequency: 48.999},
	{Name: "g#1", Frequency: 51.913},
	{Name: "a1", Frequency: 55.0},
	{Name: "a#1", Frequency: 58.27},
	{Name: "b1", Frequency: 61.735},
	{Name: "c2", Frequency: 65.406},
	{Name: "c#2", Frequency: 69.296},
	{Name: "d2", Frequency: 73.416},
	{Name: "d#2", Frequency: 77.782},
	{Name: "e2", Frequency: 82.407},
	{Name: "f2", Frequency: 87.307},
	{Name: "f#2", Frequency: 92.499},
	{Name: "g2", Frequency: 97.999},
	{Name: "g#2", Frequency: 103.826},
	{Name: "a2", Frequency: 110.0},
	{Name: "a#2", Frequency: 116.541},
	{Name: "b2", Frequency: 123.471},
	{Name: "c3", Frequency: 130.813},
	{Name: "c#3", Frequency: 138.591},
	{Name: "d3", Frequency: 146.832},
	{Name: "d#3", Frequency: 155.563},
	{Name: "e3", Frequency: 164.814},
	{Name: "f3", Frequency: 174.614},
	{Name: "f#3", Frequency: 184.997},
	{Name: "g3", Frequency: 195.998},
	{Name: "g#3", Frequency: 207.652},
	{Name: "a3", Frequency: 220.0},
	{Name: "a#3", Frequency: 233.082},
	{Name: "b3", Frequency: 246.942},
	{Name: "c4", Frequency: 261.626},
	{Name: "c#4", Frequency: 277.183},
	{Name: "d4", Frequency: 293.665},
	{Name: "d#4", Frequency: 311.127},
	{Name: "e4", Frequency: 329.628},
	{Name: "f4", Frequency: 349.228},
	{Name: "f#4", Frequency: 369.994},
	{Name: "g4", Frequency: 391.995},
	{Name: "g#4", Frequency: 415.305},
	{Name: "a4", Frequency: 440.0},
	{Name: "a#4", Frequency: 466.164},
	{Name: "b4", Frequency: 493.883},
	{Name: "c5", Frequency: 523.251},
	{Name: "c#5", Frequency: 554.365},
	{Name: "d5", Frequency: 587.33},
	{Name: "d#5", Frequency: 622.254},
	{Name: "e5", Frequency: 659.255},
	{Name: "f5", Frequency: 698.456},
	{Name: "f#5", Frequency: 739.989},
	{Name: "g5", Frequency: 783.991},
	{Name: "g#5", Frequency: 830.609},
	{Name: "a5", Frequency: 880.0},
	{Name: "a#5", Frequency: 932.328},
	{Name: "b5", Frequency: 987.767},
	{Name: "c6", Frequency: 1046.502},
	{Name: "c#6", Frequency: 1108.731},
	{Name: "d6", Frequency: 1174.659},
	{Name: "d#6", Frequency: 1244.508},
	{Name: "e6", Frequency: 1318.51},
	{Name: "f6", Frequency: 1396.913},
	{Name: "f#6", Frequency: 1479.978},
	{Name: "g6", Frequency: 1567.982},
	{Name: "g#6", Frequency: 1661.219},
	{Name: "a6", Frequency: 1760.0},
	{Name: "a#6", Frequency: 1864.655},
	{Name: "b6", Frequency: 1975.533},
	{Name: "c7", Frequency: 2093.005},
	{Name: "c#7", Frequency: 2217.461},
	{Name: "d7", Frequency: 2349.318},
	{Name: "d#7", Frequency: 2489.016},
	{Name: "e7", Frequency: 2637.02},
	{Name: "f7", Frequency: 2793.826},
	{Name: "f#7", Frequency: 2959.955},
	{Name: "g7", Frequency: 3135.963},
	{Name: "g#7", Frequency: 3322.438},
	{Name: "a7", Frequency: 3520.0},
	{Name: "a#7", Frequency: 3729.31},
	{Name: "b7", Frequency: 3951.066},
	{Name: "c8", Frequency: 4186.009},
	{Name: "c#8", Frequency: 4434.922},
	{Name: "d8", Frequency: 4698.636},
	{Name: "d#8", Frequency: 4978.032},
	{Name: "e8", Frequency: 5274.041},
	{Name: "f8", Frequency: 5587.652},
	{Name: "f#8", Frequency: 5919.911},
	{Name: "g8", Frequency: 6271.927},
	{Name: "g#8", Frequency: 6644.875},
	{Name: "a8", Frequency: 7040.0},
	{Name: "a#8", Frequency: 7458.62},
	{Name: "b8", Frequency: 7902.133},
}
